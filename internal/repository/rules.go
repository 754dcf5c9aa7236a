package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

const ruleColumns = `id, product_id, comparison, threshold, color, created_at`

func scanRule(row scanner, r *model.Rule) error {
	return row.Scan(&r.ID, &r.ProductID, &r.Comparison, &r.Threshold, &r.Color, &r.CreatedAt)
}

// RuleRepository реализует доступ к таблице rules.
// Порядок id совпадает с порядком, в котором правила проверяются при подсветке.
type RuleRepository struct {
	db *sql.DB
}

// NewRuleRepository создает новый репозиторий правил
func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// CreateRule добавляет правило; порог возвращается в том виде, в каком его сохранила база
func (r *RuleRepository) CreateRule(ctx context.Context, rule model.Rule) (*model.Rule, error) {
	query := `INSERT INTO rules(product_id, comparison, threshold, color) VALUES($1, $2, $3, $4)
		RETURNING id, threshold, created_at`
	err := r.db.QueryRowContext(ctx, query, rule.ProductID, string(rule.Comparison), rule.Threshold, rule.Color).
		Scan(&rule.ID, &rule.Threshold, &rule.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert rule: %w", translate(err))
	}
	return &rule, nil
}

// GetRule возвращает правило по id
func (r *RuleRepository) GetRule(ctx context.Context, id int) (*model.Rule, error) {
	var rule model.Rule
	err := scanRule(r.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM rules WHERE id=$1`, id), &rule)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return &rule, nil
}

// UpdateRule обновляет правило в транзакции с блокировкой строки
func (r *RuleRepository) UpdateRule(ctx context.Context, rule model.Rule) (*model.Rule, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	var current model.Rule
	row := tx.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM rules WHERE id=$1 FOR UPDATE`, rule.ID)
	if err := scanRule(row, &current); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to select rule for update: %w", err)
	}
	updateQuery := `UPDATE rules SET product_id=$1, comparison=$2, threshold=$3, color=$4 WHERE id=$5 RETURNING threshold`
	err = tx.QueryRowContext(ctx, updateQuery, rule.ProductID, string(rule.Comparison), rule.Threshold, rule.Color, rule.ID).
		Scan(&rule.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", translate(err))
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	rule.CreatedAt = current.CreatedAt
	return &rule, nil
}

// RemoveRule удаляет правило
func (r *RuleRepository) RemoveRule(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rules WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove rule: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRules возвращает все правила, включая глобальные и осиротевшие
func (r *RuleRepository) ListRules(ctx context.Context) ([]model.Rule, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+ruleColumns+` FROM rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select rules: %w", err)
	}
	defer rows.Close()
	return collectRules(rows)
}

// ListRulesForProduct возвращает правила, привязанные к товару
func (r *RuleRepository) ListRulesForProduct(ctx context.Context, productID int) ([]model.Rule, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+ruleColumns+` FROM rules WHERE product_id=$1 ORDER BY id`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to select product rules: %w", err)
	}
	defer rows.Close()
	return collectRules(rows)
}

func collectRules(rows *sql.Rows) ([]model.Rule, error) {
	rules := []model.Rule{}
	for rows.Next() {
		var rule model.Rule
		if err := scanRule(rows, &rule); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}
	return rules, nil
}
