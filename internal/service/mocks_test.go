package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	cachepkg "github.com/DIMSGN/inventory-app-sub000/pkg/cache"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

var nopLog = zerolog.Nop()

func intPtr(v int) *int { return &v }

// mockProducts реализует ProductRepo; поля-функции задают поведение каждого метода
type mockProducts struct {
	createFn func(ctx context.Context, p model.Product) (*model.Product, error)
	getFn    func(ctx context.Context, id int) (*model.Product, error)
	updateFn func(ctx context.Context, p model.Product) (*model.Product, error)
	stockFn  func(ctx context.Context, id int, delta model.Amount) (*model.Product, error)
	removeFn func(ctx context.Context, id int) error
	listFn   func(ctx context.Context) ([]model.Product, error)
	pageFn   func(ctx context.Context, limit, offset int) ([]model.Product, int, error)
}

func (m *mockProducts) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	return m.createFn(ctx, p)
}
func (m *mockProducts) GetProduct(ctx context.Context, id int) (*model.Product, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	// по умолчанию товар существует
	return &model.Product{ID: id}, nil
}
func (m *mockProducts) UpdateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	return m.updateFn(ctx, p)
}
func (m *mockProducts) AdjustStock(ctx context.Context, id int, delta model.Amount) (*model.Product, error) {
	return m.stockFn(ctx, id, delta)
}
func (m *mockProducts) RemoveProduct(ctx context.Context, id int) error {
	return m.removeFn(ctx, id)
}
func (m *mockProducts) ListProducts(ctx context.Context) ([]model.Product, error) {
	return m.listFn(ctx)
}
func (m *mockProducts) ListProductsPage(ctx context.Context, limit, offset int) ([]model.Product, int, error) {
	return m.pageFn(ctx, limit, offset)
}

// mockRules реализует RuleRepo
type mockRules struct {
	createFn  func(ctx context.Context, r model.Rule) (*model.Rule, error)
	getFn     func(ctx context.Context, id int) (*model.Rule, error)
	updateFn  func(ctx context.Context, r model.Rule) (*model.Rule, error)
	removeFn  func(ctx context.Context, id int) error
	listFn    func(ctx context.Context) ([]model.Rule, error)
	forProdFn func(ctx context.Context, productID int) ([]model.Rule, error)
}

func (m *mockRules) CreateRule(ctx context.Context, r model.Rule) (*model.Rule, error) {
	return m.createFn(ctx, r)
}
func (m *mockRules) GetRule(ctx context.Context, id int) (*model.Rule, error) {
	return m.getFn(ctx, id)
}
func (m *mockRules) UpdateRule(ctx context.Context, r model.Rule) (*model.Rule, error) {
	return m.updateFn(ctx, r)
}
func (m *mockRules) RemoveRule(ctx context.Context, id int) error {
	return m.removeFn(ctx, id)
}
func (m *mockRules) ListRules(ctx context.Context) ([]model.Rule, error) {
	return m.listFn(ctx)
}
func (m *mockRules) ListRulesForProduct(ctx context.Context, productID int) ([]model.Rule, error) {
	if m.forProdFn == nil {
		return []model.Rule{}, nil
	}
	return m.forProdFn(ctx, productID)
}

// mockReference реализует ReferenceRepo
type mockReference struct {
	createFn func(ctx context.Context, name string) (*model.Reference, error)
	listFn   func(ctx context.Context) ([]model.Reference, error)
	removeFn func(ctx context.Context, id int) error
}

func (m *mockReference) Create(ctx context.Context, name string) (*model.Reference, error) {
	return m.createFn(ctx, name)
}
func (m *mockReference) List(ctx context.Context) ([]model.Reference, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx)
}
func (m *mockReference) Remove(ctx context.Context, id int) error {
	return m.removeFn(ctx, id)
}

// mockCache симулирует кэш Redis; по умолчанию каждый Get даёт промах
type mockCache struct {
	set         func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	get         func(ctx context.Context, key string) ([]byte, error)
	inval       func(ctx context.Context, key string) error
	invalPrefix func(ctx context.Context, prefix string) error
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.set == nil {
		return nil
	}
	return m.set(ctx, key, value, ttl)
}
func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.get == nil {
		return nil, cachepkg.ErrCacheMiss
	}
	return m.get(ctx, key)
}
func (m *mockCache) Invalidate(ctx context.Context, key string) error {
	if m.inval == nil {
		return nil
	}
	return m.inval(ctx, key)
}
func (m *mockCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	if m.invalPrefix == nil {
		return nil
	}
	return m.invalPrefix(ctx, prefix)
}

// mockPublisher запоминает опубликованные события
type mockPublisher struct {
	err    error
	events []model.Event
}

func (m *mockPublisher) Publish(event interface{}) error {
	if e, ok := event.(model.Event); ok {
		m.events = append(m.events, e)
	}
	return m.err
}

func (m *mockPublisher) actions() []string {
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Entity+":"+e.Action)
	}
	return out
}

func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
