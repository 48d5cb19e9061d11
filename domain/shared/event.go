package shared

import (
	"fmt"
	"time"
)

// DomainEvent is recorded by aggregates when something business-relevant
// happens. Events are collected by the unit of work and persisted to the
// outbox table inside the same transaction as the state change.
type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
	AggregateID() string
}

// EventPayloader is implemented by events that expose a serializable payload
// beyond the three DomainEvent fields. The outbox repository merges it into
// the stored JSON document.
type EventPayloader interface {
	Payload() map[string]any
}

// ValidateEvent rejects malformed events before they reach the outbox.
func ValidateEvent(event DomainEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.EventName() == "" {
		return fmt.Errorf("event name cannot be empty")
	}
	if event.AggregateID() == "" {
		return fmt.Errorf("event aggregate id cannot be empty")
	}
	if event.OccurredOn().IsZero() {
		return fmt.Errorf("event occurrence time cannot be zero")
	}
	return nil
}
