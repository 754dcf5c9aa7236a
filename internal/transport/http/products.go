package http

import (
	"net/http"
	"strconv"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

// Размер страницы списка товаров: по умолчанию и наибольший допустимый
const (
	defaultListLimit = 10
	maxListLimit     = 100
)

type productRequest struct {
	Name       string       `json:"name" validate:"required,max=255"`
	Quantity   model.Amount `json:"quantity"`
	UnitID     *int         `json:"unitId" validate:"omitempty,gt=0"`
	CategoryID *int         `json:"categoryId" validate:"omitempty,gt=0"`
}

func (req productRequest) product(id int) model.Product {
	return model.Product{ID: id, Name: req.Name, Quantity: req.Quantity, UnitID: req.UnitID, CategoryID: req.CategoryID}
}

type stockRequest struct {
	Delta model.Amount `json:"delta" validate:"required"`
}

// CreateProduct обрабатывает POST /product/create
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.srv.Products.Create(r.Context(), req.product(0))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetProduct обрабатывает GET /product/get?id=
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	p, err := h.srv.Products.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProduct обрабатывает PATCH /product/update?id=
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req productRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.srv.Products.Update(r.Context(), req.product(id))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// AdjustStock обрабатывает PATCH /product/stock?id= с телом {"delta": n}
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req stockRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.srv.Products.AdjustStock(r.Context(), id, req.Delta)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// RemoveProduct обрабатывает DELETE /product/remove?id=
func (h *Handler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := h.srv.Products.Remove(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "removed": true})
}

type listMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ListProducts обрабатывает GET /products/list?limit=&offset=
// Некорректные limit и offset заменяются значениями по умолчанию (10 и 0)
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := defaultListLimit, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			limit = min(i, maxListLimit)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			offset = i
		}
	}
	products, total, err := h.srv.Products.List(r.Context(), limit, offset)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, struct {
		Meta     listMeta        `json:"meta"`
		Products []model.Product `json:"products"`
	}{listMeta{Total: total, Limit: limit, Offset: offset}, products})
}
