package service

import (
	"context"
	"errors"
	"time"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

// Ошибки валидации входных данных; HTTP-слой отвечает на них 422
var (
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrInvalidQuantity   = errors.New("quantity must be a finite number")
	ErrInvalidDelta      = errors.New("delta must be a non-zero finite number")
	ErrInvalidComparison = errors.New("comparison must be one of <, <=, =, >=, >")
	ErrInvalidThreshold  = errors.New("threshold must be a finite number")
	ErrEmptyColor        = errors.New("color cannot be empty")
	ErrUnknownProduct    = errors.New("target product does not exist")
)

var validationErrors = []error{
	ErrEmptyName, ErrInvalidQuantity, ErrInvalidDelta,
	ErrInvalidComparison, ErrInvalidThreshold, ErrEmptyColor, ErrUnknownProduct,
}

// IsValidation сообщает, является ли ошибка ошибкой валидации
func IsValidation(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// ProductStore отдаёт товары для вычисления подсветки
type ProductStore interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int) (*model.Product, error)
}

// RuleStore отдаёт правила для вычисления подсветки
type RuleStore interface {
	ListRules(ctx context.Context) ([]model.Rule, error)
	ListRulesForProduct(ctx context.Context, productID int) ([]model.Rule, error)
}

// Cache определяет интерфейс кэша (Redis)
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Invalidate(ctx context.Context, key string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Publisher публикует события журнала изменений (NATS)
type Publisher interface {
	Publish(event interface{}) error
}
