package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryRows обрабатывает GET /inventory/rows
func (h *Handler) InventoryRows(w http.ResponseWriter, r *http.Request) {
	rows, err := h.srv.Inventory.Rows(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if rows == nil {
		rows = []model.InventoryRow{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

// InventoryRow обрабатывает GET /inventory/row?id=
func (h *Handler) InventoryRow(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	row, err := h.srv.Inventory.RowFor(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// InventoryAlerts обрабатывает GET /inventory/alerts
func (h *Handler) InventoryAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.srv.Inventory.Alerts(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// InventoryExport обрабатывает GET /inventory/export и отдаёт XLSX-файл
func (h *Handler) InventoryExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.srv.Inventory.Export(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	name := fmt.Sprintf("inventory_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
