package http

import (
	"net/http"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

type ruleRequest struct {
	ProductID  *int         `json:"productId" validate:"omitempty,gt=0"`
	Comparison string       `json:"comparison" validate:"required"`
	Threshold  model.Amount `json:"threshold" validate:"required"`
	Color      string       `json:"color" validate:"required,max=64"`
}

func (req ruleRequest) rule(id int) model.Rule {
	return model.Rule{
		ID:         id,
		ProductID:  req.ProductID,
		Comparison: model.Comparison(req.Comparison),
		Threshold:  req.Threshold,
		Color:      req.Color,
	}
}

// CreateRule обрабатывает POST /rule/create
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if !h.decode(w, r, &req) {
		return
	}
	rule, err := h.srv.Rules.Create(r.Context(), req.rule(0))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// GetRule обрабатывает GET /rule/get?id=
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	rule, err := h.srv.Rules.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// UpdateRule обрабатывает PATCH /rule/update?id=
func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req ruleRequest
	if !h.decode(w, r, &req) {
		return
	}
	rule, err := h.srv.Rules.Update(r.Context(), req.rule(id))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// RemoveRule обрабатывает DELETE /rule/remove?id=
func (h *Handler) RemoveRule(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := h.srv.Rules.Remove(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "removed": true})
}

// ListRules обрабатывает GET /rules/list[?productId=]
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	var productID *int
	if r.URL.Query().Get("productId") != "" {
		id, ok := parseID(r, "productId")
		if !ok {
			badRequest(w, "invalid productId")
			return
		}
		productID = &id
	}
	list, err := h.srv.Rules.List(r.Context(), productID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if list == nil {
		list = []model.Rule{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rules": list})
}
