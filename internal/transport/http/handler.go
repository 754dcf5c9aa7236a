package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
	"github.com/DIMSGN/inventory-app-sub000/internal/repository"
	"github.com/DIMSGN/inventory-app-sub000/internal/service"
)

// Коды ошибок в теле ответа
const (
	codeBadRequest = 1
	codeValidation = 2
	codeNotFound   = 3
	codeConflict   = 4
)

// maxBodyBytes ограничивает размер JSON-тела запроса
const maxBodyBytes = 1 << 20

// ProductsService задаёт операции с товарами, используемые хендлером
type ProductsService interface {
	Create(ctx context.Context, p model.Product) (*model.Product, error)
	Get(ctx context.Context, id int) (*model.Product, error)
	Update(ctx context.Context, p model.Product) (*model.Product, error)
	AdjustStock(ctx context.Context, id int, delta model.Amount) (*model.Product, error)
	Remove(ctx context.Context, id int) error
	List(ctx context.Context, limit, offset int) ([]model.Product, int, error)
}

// RulesService задаёт операции с правилами подсветки
type RulesService interface {
	Create(ctx context.Context, r model.Rule) (*model.Rule, error)
	Get(ctx context.Context, id int) (*model.Rule, error)
	Update(ctx context.Context, r model.Rule) (*model.Rule, error)
	Remove(ctx context.Context, id int) error
	List(ctx context.Context, productID *int) ([]model.Rule, error)
}

// ReferenceService задаёт операции со справочником (категории, единицы измерения)
type ReferenceService interface {
	Create(ctx context.Context, name string) (*model.Reference, error)
	List(ctx context.Context) ([]model.Reference, error)
	Remove(ctx context.Context, id int) error
}

// InventoryService отдаёт складскую таблицу с подсветкой
type InventoryService interface {
	Rows(ctx context.Context) ([]model.InventoryRow, error)
	RowFor(ctx context.Context, id int) (*model.InventoryRow, error)
	Alerts(ctx context.Context) ([]model.Alert, error)
	Export(ctx context.Context) ([]byte, error)
}

// ReadinessCheck проверяет доступность внешней зависимости (БД, Redis)
type ReadinessCheck func(ctx context.Context) error

// Services объединяет сервисы, которые обслуживает HTTP-слой
type Services struct {
	Products   ProductsService
	Rules      RulesService
	Categories ReferenceService
	Units      ReferenceService
	Inventory  InventoryService
}

// Handler содержит зависимости и реализует HTTP-эндпоинты
type Handler struct {
	srv      Services
	log      zerolog.Logger
	checks   map[string]ReadinessCheck
	validate *validator.Validate
}

// NewHandler создаёт новый HTTP Handler; checks вызываются в /readyz
func NewHandler(srv Services, log zerolog.Logger, checks map[string]ReadinessCheck) *Handler {
	v := validator.New()
	// в details отдаём имена полей из json-тегов
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Handler{srv: srv, log: log, checks: checks, validate: v}
}

// RegisterRoutes регистрирует маршруты API
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.HandleFunc("/readyz", h.Readyz).Methods("GET")

	r.HandleFunc("/product/create", h.CreateProduct).Methods("POST")
	r.HandleFunc("/product/get", h.GetProduct).Methods("GET")
	r.HandleFunc("/product/update", h.UpdateProduct).Methods("PATCH")
	r.HandleFunc("/product/stock", h.AdjustStock).Methods("PATCH")
	r.HandleFunc("/product/remove", h.RemoveProduct).Methods("DELETE")
	r.HandleFunc("/products/list", h.ListProducts).Methods("GET")

	r.HandleFunc("/rule/create", h.CreateRule).Methods("POST")
	r.HandleFunc("/rule/get", h.GetRule).Methods("GET")
	r.HandleFunc("/rule/update", h.UpdateRule).Methods("PATCH")
	r.HandleFunc("/rule/remove", h.RemoveRule).Methods("DELETE")
	r.HandleFunc("/rules/list", h.ListRules).Methods("GET")

	r.HandleFunc("/category/create", h.createReference(h.srv.Categories)).Methods("POST")
	r.HandleFunc("/categories/list", h.listReference(h.srv.Categories)).Methods("GET")
	r.HandleFunc("/category/remove", h.removeReference(h.srv.Categories)).Methods("DELETE")
	r.HandleFunc("/unit/create", h.createReference(h.srv.Units)).Methods("POST")
	r.HandleFunc("/units/list", h.listReference(h.srv.Units)).Methods("GET")
	r.HandleFunc("/unit/remove", h.removeReference(h.srv.Units)).Methods("DELETE")

	r.HandleFunc("/inventory/rows", h.InventoryRows).Methods("GET")
	r.HandleFunc("/inventory/row", h.InventoryRow).Methods("GET")
	r.HandleFunc("/inventory/alerts", h.InventoryAlerts).Methods("GET")
	r.HandleFunc("/inventory/export", h.InventoryExport).Methods("GET")
}

// ErrorResponse модель ошибки API
type ErrorResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, ErrorResponse{codeBadRequest, msg, map[string]interface{}{}})
}

// handleError переводит ошибку сервиса в HTTP-статус
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case service.IsValidation(err), errors.Is(err, repository.ErrEmptyName):
		writeError(w, http.StatusUnprocessableEntity, ErrorResponse{codeValidation, "errors.common.validation", map[string]interface{}{"error": err.Error()}})
	case errors.Is(err, repository.ErrInvalidReference):
		writeError(w, http.StatusUnprocessableEntity, ErrorResponse{codeValidation, "errors.common.invalidReference", map[string]interface{}{"error": err.Error()}})
	case errors.Is(err, repository.ErrOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, ErrorResponse{codeValidation, "errors.common.outOfRange", map[string]interface{}{"error": err.Error()}})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrorResponse{codeNotFound, "errors.common.notFound", map[string]interface{}{}})
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, ErrorResponse{codeConflict, "errors.common.duplicate", map[string]interface{}{}})
	default:
		h.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, ErrorResponse{codeBadRequest, err.Error(), map[string]interface{}{}})
	}
}

// decode читает JSON-тело и проверяет теги validate.
// При ошибке ответ уже записан и вызывающий должен сразу вернуться.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(req); err != nil {
		badRequest(w, "invalid request body")
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			badRequest(w, err.Error())
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		writeError(w, http.StatusUnprocessableEntity, ErrorResponse{codeValidation, "errors.common.validation", fields})
		return false
	}
	return true
}

// parseID извлекает положительный целочисленный параметр из query
func parseID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Healthz возвращает статус работы сервиса
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Readyz возвращает готовность сервиса: 503, если хотя бы одна зависимость недоступна
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	failed := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		h.log.Warn().Interface("failed", failed).Msg("readiness check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "unavailable", "failed": failed})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
