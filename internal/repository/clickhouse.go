package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

// ClickhouseRepo реализует пакетную запись журнала событий склада в ClickHouse
type ClickhouseRepo struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewClickhouseRepo создаёт новый репозиторий для ClickHouse
func NewClickhouseRepo(db *sql.DB, log zerolog.Logger) *ClickhouseRepo {
	return &ClickhouseRepo{db: db, log: log}
}

// BatchInsertEvents записывает пакет событий в таблицу events_log
func (r *ClickhouseRepo) BatchInsertEvents(ctx context.Context, events []model.Event) error {
	// clickhouse-go собирает все Exec подготовленного запроса в один блок при Commit
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	r.log.Debug().Int("count", len(events)).Msg("clickhouse batch insert started")
	query := `INSERT INTO events_log (EventId, Entity, Action, EntityId, Payload, EventTime) VALUES (?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			e.ID.String(), e.Entity, e.Action,
			int64(e.EntityID), string(e.Payload), e.OccurredAt,
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	r.log.Info().Int("count", len(events)).Msg("events written to clickhouse")
	return nil
}
