package po

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/lumapp/marketplace/domain/shared"
)

// OutboxEventPO maps the outbox_events table backing the transactional
// outbox: events are written in the same transaction as the state change and
// relayed asynchronously by the worker.
type OutboxEventPO struct {
	ID          string    `gorm:"primaryKey;size:36"`
	AggregateID string    `gorm:"size:36;index;not null"`
	EventType   string    `gorm:"size:100;index;not null"`
	Payload     []byte    `gorm:"type:jsonb;not null"`
	Status      string    `gorm:"size:20;default:PENDING;not null;index"`
	RetryCount  int       `gorm:"default:0;not null"`
	LastError   string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (OutboxEventPO) TableName() string { return "outbox_events" }

// EventStatus is the relay state of an outbox row.
type EventStatus string

const (
	EventStatusPending    EventStatus = "PENDING"
	EventStatusProcessing EventStatus = "PROCESSING"
	EventStatusPublished  EventStatus = "PUBLISHED"
	EventStatusFailed     EventStatus = "FAILED"
)

// FromDomainEvent serializes a domain event into an outbox row.
func FromDomainEvent(event shared.DomainEvent) (*OutboxEventPO, error) {
	eventData := map[string]any{
		"event_name":   event.EventName(),
		"aggregate_id": event.AggregateID(),
		"occurred_on":  event.OccurredOn(),
	}
	if payloader, ok := event.(shared.EventPayloader); ok {
		for k, v := range payloader.Payload() {
			eventData[k] = v
		}
	}

	payload, err := json.Marshal(eventData)
	if err != nil {
		return nil, err
	}

	return &OutboxEventPO{
		ID:          uuid.NewString(),
		AggregateID: event.AggregateID(),
		EventType:   event.EventName(),
		Payload:     payload,
		Status:      string(EventStatusPending),
	}, nil
}

// ToEventData deserializes the stored payload.
func (po *OutboxEventPO) ToEventData() (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal(po.Payload, &data); err != nil {
		return nil, err
	}
	return data, nil
}
