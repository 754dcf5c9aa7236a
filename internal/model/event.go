package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Сущности, изменения которых попадают в журнал событий
const (
	EntityProduct  = "product"
	EntityRule     = "rule"
	EntityCategory = "category"
	EntityUnit     = "unit"
)

// Действия над сущностями
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionRemove = "remove"
	ActionStock  = "stock"
	ActionAlert  = "alert"
)

// Event описывает запись журнала изменений, публикуемая в NATS и сохраняемая в ClickHouse
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Entity     string          `json:"entity"`
	Action     string          `json:"action"`
	EntityID   int             `json:"entityId"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// NewEvent создаёт событие с новым идентификатором и сериализованным payload
func NewEvent(entity, action string, entityID int, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.New(),
		Entity:     entity,
		Action:     action,
		EntityID:   entityID,
		Payload:    data,
		OccurredAt: time.Now().UTC(),
	}, nil
}
