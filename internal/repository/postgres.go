package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

// ErrNotFound возвращается при отсутствии записи
var ErrNotFound = errors.New("record not found")

// ErrEmptyName возвращается при попытке создания или обновления с пустым именем
var ErrEmptyName = &emptyNameError{}

// ErrInvalidReference возвращается, когда unit_id или category_id ссылаются на несуществующую запись
var ErrInvalidReference = errors.New("referenced record does not exist")

// ErrDuplicate возвращается при нарушении уникальности имени
var ErrDuplicate = errors.New("record already exists")

// ErrOutOfRange возвращается, когда число не помещается в колонку NUMERIC
var ErrOutOfRange = errors.New("numeric value out of range")

type emptyNameError struct{}

func (e *emptyNameError) Error() string {
	return "name cannot be empty"
}

func (e *emptyNameError) Is(target error) bool {
	return target != nil && target.Error() == e.Error()
}

// коды ошибок Postgres
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgNumericOverflow     = "22003"
)

// translate приводит ошибки ограничений Postgres к ошибкам пакета
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgForeignKeyViolation:
			return ErrInvalidReference
		case pgUniqueViolation:
			return ErrDuplicate
		case pgNumericOverflow:
			return ErrOutOfRange
		}
	}
	return err
}

const productColumns = `id, name, quantity, unit_id, category_id, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row scanner, p *model.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Quantity, &p.UnitID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
}

// ProductRepository реализует доступ к таблице products
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// CreateProduct добавляет товар; created_at и updated_at заполняются дефолтами БД.
// Остаток возвращается в том виде, в каком его сохранила база.
func (r *ProductRepository) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	if p.Name == "" {
		return nil, ErrEmptyName
	}
	query := `INSERT INTO products(name, quantity, unit_id, category_id) VALUES($1, $2, $3, $4)
		RETURNING id, quantity, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.Name, p.Quantity, p.UnitID, p.CategoryID).
		Scan(&p.ID, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", translate(err))
	}
	return &p, nil
}

// GetProduct возвращает товар по id
func (r *ProductRepository) GetProduct(ctx context.Context, id int) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	var p model.Product
	if err := scanProduct(r.db.QueryRowContext(ctx, query, id), &p); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// UpdateProduct обновляет поля товара в транзакции с блокировкой строки
func (r *ProductRepository) UpdateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	if p.Name == "" {
		return nil, ErrEmptyName
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	// выборка с блокировкой
	var current model.Product
	row := tx.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 FOR UPDATE`, p.ID)
	if err := scanProduct(row, &current); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to select product for update: %w", err)
	}
	updateQuery := `UPDATE products SET name=$1, quantity=$2, unit_id=$3, category_id=$4, updated_at=now()
		WHERE id=$5 RETURNING quantity, updated_at`
	err = tx.QueryRowContext(ctx, updateQuery, p.Name, p.Quantity, p.UnitID, p.CategoryID, p.ID).
		Scan(&current.Quantity, &current.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", translate(err))
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	current.Name = p.Name
	current.UnitID = p.UnitID
	current.CategoryID = p.CategoryID
	return &current, nil
}

// AdjustStock прибавляет delta к остатку (отрицательная delta означает списание).
// Отсутствующий остаток считается нулевым.
func (r *ProductRepository) AdjustStock(ctx context.Context, id int, delta model.Amount) (*model.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	var p model.Product
	row := tx.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 FOR UPDATE`, id)
	if err := scanProduct(row, &p); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to select product for stock update: %w", err)
	}
	updateQuery := `UPDATE products SET quantity = COALESCE(quantity, 0) + $1::numeric, updated_at=now()
		WHERE id=$2 RETURNING quantity, updated_at`
	if err := tx.QueryRowContext(ctx, updateQuery, delta, id).Scan(&p.Quantity, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", translate(err))
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &p, nil
}

// RemoveProduct удаляет товар. Правила товара остаются в таблице rules и больше никогда не срабатывают.
func (r *ProductRepository) RemoveProduct(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove product: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProducts возвращает все товары в порядке id
func (r *ProductRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// ListProductsPage возвращает страницу товаров и общее количество записей
func (r *ProductRepository) ListProductsPage(ctx context.Context, limit, offset int) ([]model.Product, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select products page: %w", err)
	}
	defer rows.Close()
	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func collectProducts(rows *sql.Rows) ([]model.Product, error) {
	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}
