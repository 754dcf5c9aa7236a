package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

// ReferenceRepository реализует доступ к справочникам categories и units.
// Обе таблицы имеют одинаковую схему (id, name).
type ReferenceRepository struct {
	db    *sql.DB
	table string
}

// NewCategoryRepository создает репозиторий категорий
func NewCategoryRepository(db *sql.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db, table: "categories"}
}

// NewUnitRepository создает репозиторий единиц измерения
func NewUnitRepository(db *sql.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db, table: "units"}
}

// Create добавляет запись справочника
func (r *ReferenceRepository) Create(ctx context.Context, name string) (*model.Reference, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	ref := model.Reference{Name: name}
	query := fmt.Sprintf(`INSERT INTO %s(name) VALUES($1) RETURNING id`, r.table)
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&ref.ID); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", r.table, translate(err))
	}
	return &ref, nil
}

// List возвращает все записи справочника в алфавитном порядке
func (r *ReferenceRepository) List(ctx context.Context) ([]model.Reference, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name`, r.table))
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", r.table, err)
	}
	defer rows.Close()
	refs := []model.Reference{}
	for rows.Next() {
		var ref model.Reference
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.table, err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", r.table, err)
	}
	return refs, nil
}

// Remove удаляет запись; у товаров ссылка обнуляется внешним ключом ON DELETE SET NULL
func (r *ReferenceRepository) Remove(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, r.table), id)
	if err != nil {
		return fmt.Errorf("failed to remove from %s: %w", r.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove from %s: %w", r.table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
