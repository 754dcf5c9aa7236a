package service

import (
	"context"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
	"github.com/DIMSGN/inventory-app-sub000/internal/report"
	"github.com/DIMSGN/inventory-app-sub000/internal/rules"
)

// InventoryService собирает складскую таблицу: товары с цветом подсветки
type InventoryService struct {
	products   ProductStore
	rules      RuleStore
	units      ReferenceLister
	categories ReferenceLister
}

// NewInventoryService создаёт сервис складской таблицы
func NewInventoryService(products ProductStore, rs RuleStore, units, categories ReferenceLister) *InventoryService {
	return &InventoryService{products: products, rules: rs, units: units, categories: categories}
}

// Rows возвращает все товары с цветом первого сработавшего правила
func (s *InventoryService) Rows(ctx context.Context) ([]model.InventoryRow, error) {
	products, byProduct, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.InventoryRow, 0, len(products))
	for _, p := range products {
		color, _ := rules.ColorFor(p, byProduct[p.ID])
		out = append(out, model.InventoryRow{Product: p, Color: color})
	}
	return out, nil
}

// RowFor возвращает строку склада для одного товара
func (s *InventoryService) RowFor(ctx context.Context, id int) (*model.InventoryRow, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	rs, err := s.rules.ListRulesForProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	color, _ := rules.ColorFor(*p, rs)
	return &model.InventoryRow{Product: *p, Color: color}, nil
}

// Alerts возвращает товары, для которых сработало хотя бы одно правило, вместе со всеми такими правилами
func (s *InventoryService) Alerts(ctx context.Context) ([]model.Alert, error) {
	products, byProduct, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Alert, 0)
	for _, p := range products {
		if matched := rules.AllMatches(p, byProduct[p.ID]); len(matched) > 0 {
			out = append(out, model.Alert{Product: p, Rules: matched})
		}
	}
	return out, nil
}

// Export формирует XLSX-выгрузку складской таблицы
func (s *InventoryService) Export(ctx context.Context) ([]byte, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	units, err := names(ctx, s.units)
	if err != nil {
		return nil, err
	}
	categories, err := names(ctx, s.categories)
	if err != nil {
		return nil, err
	}
	return report.InventoryWorkbook(rows, units, categories)
}

// load читает товары и правила, группируя правила по товару с сохранением порядка
func (s *InventoryService) load(ctx context.Context) ([]model.Product, map[int][]model.Rule, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, nil, err
	}
	all, err := s.rules.ListRules(ctx)
	if err != nil {
		return nil, nil, err
	}
	byProduct := make(map[int][]model.Rule)
	for _, r := range all {
		if r.ProductID != nil {
			byProduct[*r.ProductID] = append(byProduct[*r.ProductID], r)
		}
	}
	return products, byProduct, nil
}

func names(ctx context.Context, l ReferenceLister) (map[int]string, error) {
	refs, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[int]string, len(refs))
	for _, r := range refs {
		m[r.ID] = r.Name
	}
	return m, nil
}
