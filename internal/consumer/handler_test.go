package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

// mockRepo реализует интерфейс Repo и сохраняет полученные пакеты для проверки
type mockRepo struct {
	mu       sync.Mutex
	received [][]model.Event // полученные пакеты событий
	err      error           // ошибка, которую вернёт BatchInsertEvents
}

func (m *mockRepo) BatchInsertEvents(ctx context.Context, events []model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := make([]model.Event, len(events))
	copy(batch, events)
	m.received = append(m.received, batch)
	return m.err
}

func (m *mockRepo) batches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.received)
}

func eventData(t *testing.T, id int) []byte {
	t.Helper()
	e, err := model.NewEvent(model.EntityProduct, model.ActionStock, id, map[string]int{"id": id})
	require.NoError(t, err)
	data, err := json.Marshal(e)
	require.NoError(t, err)
	return data
}

func TestHandleMessage_NoFlush(t *testing.T) {
	// при количестве событий меньше batchSize записи в репозиторий нет
	repo := &mockRepo{}
	cons := NewConsumer(repo, 3, zerolog.Nop())

	require.NoError(t, cons.HandleMessage(context.Background(), eventData(t, 1)))
	require.Len(t, repo.received, 0)
	require.Equal(t, 1, cons.Pending())
}

func TestHandleMessage_FlushOnBatch(t *testing.T) {
	// при достижении batchSize события отправляются репозиторию одним пакетом
	repo := &mockRepo{}
	cons := NewConsumer(repo, 2, zerolog.Nop())

	for i := 1; i <= 2; i++ {
		require.NoError(t, cons.HandleMessage(context.Background(), eventData(t, i)))
	}
	require.Len(t, repo.received, 1)
	require.Len(t, repo.received[0], 2)
	require.Equal(t, 1, repo.received[0][0].EntityID)
	require.Equal(t, 2, repo.received[0][1].EntityID)
	require.Equal(t, model.ActionStock, repo.received[0][0].Action)
	require.Equal(t, 0, cons.Pending())
}

func TestFlush_Empty(t *testing.T) {
	// Flush ничего не делает, если буфер пуст
	repo := &mockRepo{}
	cons := NewConsumer(repo, 5, zerolog.Nop())
	require.NoError(t, cons.Flush(context.Background()))
	require.Len(t, repo.received, 0)
}

func TestFlush_NonEmpty(t *testing.T) {
	// Flush отправляет накопленные события
	repo := &mockRepo{}
	cons := NewConsumer(repo, 5, zerolog.Nop())

	for i := 1; i <= 3; i++ {
		require.NoError(t, cons.HandleMessage(context.Background(), eventData(t, i)))
	}
	require.Len(t, repo.received, 0)

	require.NoError(t, cons.Flush(context.Background()))
	require.Len(t, repo.received, 1)
	require.Len(t, repo.received[0], 3)
}

func TestHandleMessage_ParseError(t *testing.T) {
	// некорректный JSON возвращает ошибку и ничего не буферизует
	repo := &mockRepo{}
	cons := NewConsumer(repo, 1, zerolog.Nop())
	require.Error(t, cons.HandleMessage(context.Background(), []byte("not json")))
	require.Len(t, repo.received, 0)
	require.Equal(t, 0, cons.Pending())
}

func TestBatchInsertError_IsPropagated(t *testing.T) {
	// ошибка из репозитория возвращается при достижении batchSize
	ex := errors.New("insert failed")
	repo := &mockRepo{err: ex}
	cons := NewConsumer(repo, 1, zerolog.Nop())
	err := cons.HandleMessage(context.Background(), eventData(t, 9))
	require.ErrorIs(t, err, ex)
}

func TestRun_PeriodicFlush(t *testing.T) {
	// неполный пакет сбрасывается по таймеру
	repo := &mockRepo{}
	cons := NewConsumer(repo, 100, zerolog.Nop())
	require.NoError(t, cons.HandleMessage(context.Background(), eventData(t, 1)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cons.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return repo.batches() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	require.Equal(t, 0, cons.Pending())
}
