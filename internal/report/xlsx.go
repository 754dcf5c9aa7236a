// Package report формирует выгрузки складских остатков
package report

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

const sheetName = "Inventory"

var hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// namedColors содержит именованные цвета, которые чаще всего встречаются в правилах
var namedColors = map[string]string{
	"red":    "FF0000",
	"orange": "FFA500",
	"yellow": "FFFF00",
	"green":  "008000",
	"blue":   "0000FF",
	"purple": "800080",
	"gray":   "808080",
	"grey":   "808080",
	"black":  "000000",
	"white":  "FFFFFF",
}

// FillColor переводит цвет правила в RGB для заливки ячейки; false, если цвет не распознан
func FillColor(color string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(color))
	if rgb, ok := namedColors[c]; ok {
		return rgb, true
	}
	m := hexColor.FindStringSubmatch(c)
	if m == nil {
		return "", false
	}
	h := m[1]
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	return strings.ToUpper(h), true
}

// InventoryWorkbook строит XLSX-файл со строками склада.
// units и categories сопоставляют идентификаторы справочников с названиями.
func InventoryWorkbook(rows []model.InventoryRow, units, categories map[int]string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []interface{}{"ID", "Name", "Quantity", "Unit", "Category", "Color"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	styles := make(map[string]int)
	for i, r := range rows {
		line := i + 2
		values := []interface{}{
			r.Product.ID,
			r.Product.Name,
			string(r.Product.Quantity),
			lookup(units, r.Product.UnitID),
			lookup(categories, r.Product.CategoryID),
			r.Color,
		}
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", line, err)
		}

		rgb, ok := FillColor(r.Color)
		if !ok {
			continue
		}
		style, ok := styles[rgb]
		if !ok {
			style, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{rgb}},
			})
			if err != nil {
				return nil, fmt.Errorf("create style: %w", err)
			}
			styles[rgb] = style
		}
		last, _ := excelize.CoordinatesToCellName(len(values), line)
		if err := f.SetCellStyle(sheetName, cell, last, style); err != nil {
			return nil, fmt.Errorf("style row %d: %w", line, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func lookup(names map[int]string, id *int) string {
	if id == nil {
		return ""
	}
	return names[*id]
}
