package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
	"github.com/DIMSGN/inventory-app-sub000/internal/repository"
)

func ruleKey(id int) string { return fmt.Sprintf("rule:%d", id) }

// RuleRepo определяет операции репозитория правил
type RuleRepo interface {
	RuleStore
	CreateRule(ctx context.Context, r model.Rule) (*model.Rule, error)
	GetRule(ctx context.Context, id int) (*model.Rule, error)
	UpdateRule(ctx context.Context, r model.Rule) (*model.Rule, error)
	RemoveRule(ctx context.Context, id int) error
}

// RulesService реализует управление правилами подсветки
type RulesService struct {
	repo     RuleRepo
	products ProductStore
	cache    Cache
	pub      Publisher
	log      zerolog.Logger
	ttl      time.Duration
}

// NewRulesService создаёт сервис правил
func NewRulesService(repo RuleRepo, products ProductStore, c Cache, p Publisher, log zerolog.Logger, ttl time.Duration) *RulesService {
	return &RulesService{repo: repo, products: products, cache: c, pub: p, log: log, ttl: ttl}
}

// validate проверяет правило и приводит порог к каноническому виду
func (s *RulesService) validate(ctx context.Context, r *model.Rule) error {
	if !r.Comparison.Valid() {
		return ErrInvalidComparison
	}
	threshold, ok := r.Threshold.Decimal()
	if !ok {
		return ErrInvalidThreshold
	}
	r.Threshold = model.AmountOf(threshold)
	r.Color = strings.TrimSpace(r.Color)
	if r.Color == "" {
		return ErrEmptyColor
	}
	if r.ProductID != nil {
		if _, err := s.products.GetProduct(ctx, *r.ProductID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUnknownProduct
			}
			return err
		}
	}
	return nil
}

// Create создаёт правило
func (s *RulesService) Create(ctx context.Context, r model.Rule) (*model.Rule, error) {
	if err := s.validate(ctx, &r); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateRule(ctx, r)
	if err != nil {
		return nil, err
	}
	publishEvent(s.pub, s.log, model.EntityRule, model.ActionCreate, created.ID, created)
	return created, nil
}

// Get возвращает правило, используя кэш
func (s *RulesService) Get(ctx context.Context, id int) (*model.Rule, error) {
	key := ruleKey(id)
	if data, err := s.cache.Get(ctx, key); err == nil {
		var r model.Rule
		if err := json.Unmarshal(data, &r); err == nil {
			return &r, nil
		}
	}
	r, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(r); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to write cache")
		}
	}
	return r, nil
}

// Update заменяет правило целиком
func (s *RulesService) Update(ctx context.Context, r model.Rule) (*model.Rule, error) {
	if err := s.validate(ctx, &r); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateRule(ctx, r)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, updated.ID)
	publishEvent(s.pub, s.log, model.EntityRule, model.ActionUpdate, updated.ID, updated)
	return updated, nil
}

// Remove удаляет правило
func (s *RulesService) Remove(ctx context.Context, id int) error {
	if err := s.repo.RemoveRule(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	publishEvent(s.pub, s.log, model.EntityRule, model.ActionRemove, id, map[string]int{"id": id})
	return nil
}

// List возвращает все правила или только правила товара productID
func (s *RulesService) List(ctx context.Context, productID *int) ([]model.Rule, error) {
	if productID != nil {
		return s.repo.ListRulesForProduct(ctx, *productID)
	}
	return s.repo.ListRules(ctx)
}

func (s *RulesService) invalidate(ctx context.Context, id int) {
	if err := s.cache.Invalidate(ctx, ruleKey(id)); err != nil {
		s.log.Warn().Err(err).Int("rule_id", id).Msg("failed to invalidate rule cache")
	}
}
