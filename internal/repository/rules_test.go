package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

var ruleCols = []string{"id", "product_id", "comparison", "threshold", "color", "created_at"}

func TestCreateRule(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRuleRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO rules(product_id, comparison, threshold, color)")).
		WithArgs(4, "<", "2", "#ff0000").
		WillReturnRows(sqlmock.NewRows([]string{"id", "threshold", "created_at"}).AddRow(11, "2.0000000000", now))

	r, err := repo.CreateRule(context.Background(), model.Rule{ProductID: intPtr(4), Comparison: model.Less, Threshold: "2", Color: "#ff0000"})
	require.NoError(t, err)
	require.Equal(t, 11, r.ID)
	require.Equal(t, 4, *r.ProductID)
	require.Equal(t, model.Amount("2.0000000000"), r.Threshold)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRule_OutOfRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRuleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO rules(product_id, comparison, threshold, color)")).
		WithArgs(nil, ">", "1e20", "red").
		WillReturnError(&pq.Error{Code: "22003"})

	_, err = repo.CreateRule(context.Background(), model.Rule{Comparison: model.Greater, Threshold: "1e20", Color: "red"})
	require.ErrorIs(t, err, ErrOutOfRange)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRule_Global(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRuleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO rules(product_id, comparison, threshold, color)")).
		WithArgs(nil, ">=", "100", "green").
		WillReturnRows(sqlmock.NewRows([]string{"id", "threshold", "created_at"}).AddRow(12, "100", time.Now()))

	r, err := repo.CreateRule(context.Background(), model.Rule{Comparison: model.GreaterOrEqual, Threshold: "100", Color: "green"})
	require.NoError(t, err)
	require.Nil(t, r.ProductID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRule(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRuleRepository(db)
	query := regexp.QuoteMeta("SELECT id, product_id, comparison, threshold, color, created_at FROM rules WHERE id=$1")

	mock.ExpectQuery(query).WithArgs(1).
		WillReturnRows(sqlmock.NewRows(ruleCols).AddRow(1, 2, "<=", "0.5", "orange", time.Now()))
	r, err := repo.GetRule(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, model.LessOrEqual, r.Comparison)
	require.Equal(t, model.Amount("0.5"), r.Threshold)

	mock.ExpectQuery(query).WithArgs(2).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetRule(context.Background(), 2)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRule(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRuleRepository(db)

	created := time.Now().Add(-time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM rules WHERE id=$1 FOR UPDATE")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows(ruleCols).AddRow(3, 1, "<", "5", "red", created))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE rules SET product_id=$1, comparison=$2, threshold=$3, color=$4 WHERE id=$5 RETURNING threshold")).
		WithArgs(1, "=", "10.0000001", "black", 3).
		WillReturnRows(sqlmock.NewRows([]string{"threshold"}).AddRow("10.0000001000"))
	mock.ExpectCommit()

	r, err := repo.UpdateRule(context.Background(), model.Rule{ID: 3, ProductID: intPtr(1), Comparison: model.Equal, Threshold: "10.0000001", Color: "black"})
	require.NoError(t, err)
	require.Equal(t, "black", r.Color)
	require.Equal(t, model.Amount("10.0000001000"), r.Threshold)
	require.True(t, r.CreatedAt.Equal(created))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM rules WHERE id=$1 FOR UPDATE")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows(ruleCols).AddRow(3, 1, "<", "5", "red", created))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE rules SET")).
		WithArgs(1, "<", "1e20", "red", 3).
		WillReturnError(&pq.Error{Code: pgNumericOverflow})
	mock.ExpectRollback()
	_, err = repo.UpdateRule(context.Background(), model.Rule{ID: 3, ProductID: intPtr(1), Comparison: model.Less, Threshold: "1e20", Color: "red"})
	require.ErrorIs(t, err, ErrOutOfRange)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM rules WHERE id=$1 FOR UPDATE")).WithArgs(9).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()
	_, err = repo.UpdateRule(context.Background(), model.Rule{ID: 9})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveRule(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRuleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rules WHERE id=$1")).WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RemoveRule(context.Background(), 1))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rules WHERE id=$1")).WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.RemoveRule(context.Background(), 2), ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rules WHERE id=$1")).WithArgs(3).
		WillReturnError(errors.New("conn reset"))
	require.Error(t, repo.RemoveRule(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRules(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRuleRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM rules ORDER BY id")).
		WillReturnRows(sqlmock.NewRows(ruleCols).
			AddRow(1, 1, "<", "5", "red", now).
			AddRow(2, nil, ">", "100", "green", now))
	all, err := repo.ListRules(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Nil(t, all[1].ProductID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM rules WHERE product_id=$1 ORDER BY id")).WithArgs(1).
		WillReturnRows(sqlmock.NewRows(ruleCols).AddRow(1, 1, "<", "5", "red", now))
	own, err := repo.ListRulesForProduct(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, own, 1)

	mock.ExpectQuery(regexp.QuoteMeta("FROM rules WHERE product_id=$1 ORDER BY id")).WithArgs(2).
		WillReturnRows(sqlmock.NewRows(ruleCols))
	none, err := repo.ListRulesForProduct(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
	require.NoError(t, mock.ExpectationsWereMet())
}
