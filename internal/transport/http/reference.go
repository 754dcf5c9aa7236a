package http

import (
	"net/http"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

type referenceRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

func (h *Handler) createReference(srv ReferenceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req referenceRequest
		if !h.decode(w, r, &req) {
			return
		}
		ref, err := srv.Create(r.Context(), req.Name)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ref)
	}
}

func (h *Handler) listReference(srv ReferenceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := srv.List(r.Context())
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		if list == nil {
			list = []model.Reference{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": list})
	}
}

func (h *Handler) removeReference(srv ReferenceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r, "id")
		if !ok {
			badRequest(w, "invalid id")
			return
		}
		if err := srv.Remove(r.Context(), id); err != nil {
			h.handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "removed": true})
	}
}
