package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

// ReferenceLister отдаёт записи справочника
type ReferenceLister interface {
	List(ctx context.Context) ([]model.Reference, error)
}

// ReferenceRepo определяет операции репозитория справочника
type ReferenceRepo interface {
	ReferenceLister
	Create(ctx context.Context, name string) (*model.Reference, error)
	Remove(ctx context.Context, id int) error
}

// ReferenceService управляет справочником (категории или единицы измерения)
type ReferenceService struct {
	entity string
	repo   ReferenceRepo
	cache  Cache
	pub    Publisher
	log    zerolog.Logger
}

// NewReferenceService создаёт сервис справочника; entity задаёт имя сущности в журнале событий
func NewReferenceService(entity string, repo ReferenceRepo, c Cache, p Publisher, log zerolog.Logger) *ReferenceService {
	return &ReferenceService{entity: entity, repo: repo, cache: c, pub: p, log: log}
}

// Create добавляет запись
func (s *ReferenceService) Create(ctx context.Context, name string) (*model.Reference, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	ref, err := s.repo.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	publishEvent(s.pub, s.log, s.entity, model.ActionCreate, ref.ID, ref)
	return ref, nil
}

// List возвращает все записи
func (s *ReferenceService) List(ctx context.Context) ([]model.Reference, error) {
	return s.repo.List(ctx)
}

// Remove удаляет запись. База обнуляет ссылку у товаров (ON DELETE SET NULL),
// поэтому закэшированные товары и страницы списка сбрасываются.
func (s *ReferenceService) Remove(ctx context.Context, id int) error {
	if err := s.repo.Remove(ctx, id); err != nil {
		return err
	}
	for _, prefix := range []string{productPrefix, productsListPrefix} {
		if err := s.cache.InvalidatePrefix(ctx, prefix); err != nil {
			s.log.Warn().Err(err).Str("prefix", prefix).Msg("failed to invalidate products cache")
		}
	}
	publishEvent(s.pub, s.log, s.entity, model.ActionRemove, id, map[string]int{"id": id})
	return nil
}
