package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
	"github.com/DIMSGN/inventory-app-sub000/internal/rules"
)

const (
	productPrefix      = "product:"
	productsListPrefix = "products:list:"
)

func productKey(id int) string { return fmt.Sprintf("%s%d", productPrefix, id) }

// ProductRepo определяет операции репозитория товаров
type ProductRepo interface {
	ProductStore
	CreateProduct(ctx context.Context, p model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, p model.Product) (*model.Product, error)
	AdjustStock(ctx context.Context, id int, delta model.Amount) (*model.Product, error)
	RemoveProduct(ctx context.Context, id int) error
	ListProductsPage(ctx context.Context, limit, offset int) ([]model.Product, int, error)
}

// productsPage хранит кэшируемую страницу списка товаров
type productsPage struct {
	Products []model.Product `json:"products"`
	Total    int             `json:"total"`
}

// ProductsService реализует бизнес-логику товаров:
// валидацию, кэширование чтений, инвалидирование кэша и публикацию событий
type ProductsService struct {
	repo  ProductRepo
	rules RuleStore
	cache Cache
	pub   Publisher
	log   zerolog.Logger
	ttl   time.Duration
}

// NewProductsService создаёт сервис товаров
func NewProductsService(repo ProductRepo, rules RuleStore, c Cache, p Publisher, log zerolog.Logger, ttl time.Duration) *ProductsService {
	return &ProductsService{repo: repo, rules: rules, cache: c, pub: p, log: log, ttl: ttl}
}

// normalizeQuantity проверяет остаток: пустой допустим, иначе должен быть конечным числом
func normalizeQuantity(q model.Amount) (model.Amount, error) {
	if !q.IsSet() {
		return "", nil
	}
	d, ok := q.Decimal()
	if !ok {
		return "", ErrInvalidQuantity
	}
	return model.AmountOf(d), nil
}

// Create создаёт товар
func (s *ProductsService) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	if p.Name == "" {
		return nil, ErrEmptyName
	}
	q, err := normalizeQuantity(p.Quantity)
	if err != nil {
		return nil, err
	}
	p.Quantity = q
	created, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, created.ID)
	s.publish(model.EntityProduct, model.ActionCreate, created.ID, created)
	return created, nil
}

// Get возвращает товар, сначала пытаясь прочитать его из кэша
func (s *ProductsService) Get(ctx context.Context, id int) (*model.Product, error) {
	key := productKey(id)
	if data, err := s.cache.Get(ctx, key); err == nil {
		var p model.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
	}
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, p)
	return p, nil
}

// Update заменяет имя, остаток, единицу и категорию товара
func (s *ProductsService) Update(ctx context.Context, p model.Product) (*model.Product, error) {
	if p.Name == "" {
		return nil, ErrEmptyName
	}
	q, err := normalizeQuantity(p.Quantity)
	if err != nil {
		return nil, err
	}
	p.Quantity = q
	updated, err := s.repo.UpdateProduct(ctx, p)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, updated.ID)
	s.publish(model.EntityProduct, model.ActionUpdate, updated.ID, updated)
	return updated, nil
}

// AdjustStock изменяет остаток на delta и публикует событие alert, если после изменения срабатывают правила товара
func (s *ProductsService) AdjustStock(ctx context.Context, id int, delta model.Amount) (*model.Product, error) {
	d, ok := delta.Decimal()
	if !ok || d.IsZero() {
		return nil, ErrInvalidDelta
	}
	p, err := s.repo.AdjustStock(ctx, id, model.AmountOf(d))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	s.publish(model.EntityProduct, model.ActionStock, id, p)

	productRules, err := s.rules.ListRulesForProduct(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Int("product_id", id).Msg("failed to load rules after stock update")
		return p, nil
	}
	if matched := rules.AllMatches(*p, productRules); len(matched) > 0 {
		s.publish(model.EntityProduct, model.ActionAlert, id, model.Alert{Product: *p, Rules: matched})
	}
	return p, nil
}

// Remove удаляет товар; его правила остаются осиротевшими
func (s *ProductsService) Remove(ctx context.Context, id int) error {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.publish(model.EntityProduct, model.ActionRemove, id, p)
	return nil
}

// List возвращает страницу товаров и общее количество, используя кэш
func (s *ProductsService) List(ctx context.Context, limit, offset int) ([]model.Product, int, error) {
	key := fmt.Sprintf("%s%d:%d", productsListPrefix, limit, offset)
	if data, err := s.cache.Get(ctx, key); err == nil {
		var page productsPage
		if err := json.Unmarshal(data, &page); err == nil {
			return page.Products, page.Total, nil
		}
	}
	products, total, err := s.repo.ListProductsPage(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	s.store(ctx, key, productsPage{Products: products, Total: total})
	return products, total, nil
}

// invalidate сбрасывает кэш товара и все страницы списка
func (s *ProductsService) invalidate(ctx context.Context, id int) {
	if err := s.cache.Invalidate(ctx, productKey(id)); err != nil {
		s.log.Warn().Err(err).Int("product_id", id).Msg("failed to invalidate product cache")
	}
	if err := s.cache.InvalidatePrefix(ctx, productsListPrefix); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate products list cache")
	}
}

func (s *ProductsService) store(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to write cache")
	}
}

func (s *ProductsService) publish(entity, action string, id int, payload interface{}) {
	publishEvent(s.pub, s.log, entity, action, id, payload)
}

// publishEvent отправляет событие; сбой журнала не отменяет уже выполненную операцию
func publishEvent(pub Publisher, log zerolog.Logger, entity, action string, id int, payload interface{}) {
	e, err := model.NewEvent(entity, action, id, payload)
	if err == nil {
		err = pub.Publish(e)
	}
	if err != nil {
		log.Warn().Err(err).Str("entity", entity).Str("action", action).Int("id", id).Msg("failed to publish event")
	}
}
