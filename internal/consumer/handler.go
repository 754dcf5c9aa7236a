// Пакет consumer накапливает события журнала изменений из NATS и пишет их в ClickHouse пакетами
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

// Repo описывает репозиторий ClickHouse для пакетной записи событий
type Repo interface {
	BatchInsertEvents(ctx context.Context, events []model.Event) error
}

// Consumer буферизует события и отправляет их пакетно в ClickHouse.
// batchSize задаёт максимальное количество событий до отправки, mu защищает буфер.
type Consumer struct {
	repo      Repo
	batchSize int
	log       zerolog.Logger
	events    []model.Event
	mu        sync.Mutex
}

// NewConsumer создаёт Consumer с указанным репозиторием и размером пакета
func NewConsumer(repo Repo, batchSize int, log zerolog.Logger) *Consumer {
	return &Consumer{repo: repo, batchSize: batchSize, log: log, events: make([]model.Event, 0, batchSize)}
}

// HandleMessage разбирает сообщение из NATS, добавляет событие в буфер
// и при достижении batchSize отправляет пакет в ClickHouse
func (c *Consumer) HandleMessage(ctx context.Context, data []byte) error {
	var e model.Event
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	c.log.Debug().Str("event_id", e.ID.String()).Str("entity", e.Entity).Str("action", e.Action).Msg("event received")

	c.mu.Lock()
	c.events = append(c.events, e)
	if len(c.events) < c.batchSize {
		c.mu.Unlock()
		return nil
	}
	batch := c.take()
	c.mu.Unlock()
	return c.write(ctx, batch)
}

// Flush отправляет все накопленные события, если они есть
func (c *Consumer) Flush(ctx context.Context) error {
	c.mu.Lock()
	if len(c.events) == 0 {
		c.mu.Unlock()
		return nil
	}
	batch := c.take()
	c.mu.Unlock()
	return c.write(ctx, batch)
}

// Run сбрасывает неполный пакет каждые interval до отмены ctx
func (c *Consumer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Flush(ctx); err != nil {
				c.log.Error().Err(err).Msg("periodic flush failed")
			}
		}
	}
}

// Pending возвращает число событий в буфере
func (c *Consumer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// take забирает копию буфера; вызывается под mu
func (c *Consumer) take() []model.Event {
	batch := make([]model.Event, len(c.events))
	copy(batch, c.events)
	c.events = c.events[:0]
	return batch
}

func (c *Consumer) write(ctx context.Context, batch []model.Event) error {
	if err := c.repo.BatchInsertEvents(ctx, batch); err != nil {
		return fmt.Errorf("failed to write %d events: %w", len(batch), err)
	}
	c.log.Debug().Int("count", len(batch)).Msg("batch flushed")
	return nil
}
