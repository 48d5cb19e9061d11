package order

import (
	"time"

	"github.com/lumapp/marketplace/domain/shared"
)

// Event names recorded in the outbox.
const (
	EventOrderPlaced          = "order.placed"
	EventOrderUpdated         = "order.updated"
	EventOrderDeleted         = "order.deleted"
	EventSubOrderStatusChange = "sub_order.status_changed"
	EventMessagePosted        = "order_message.posted"
)

type baseEvent struct {
	name        string
	aggregateID string
	occurredOn  time.Time
}

func (e baseEvent) EventName() string     { return e.name }
func (e baseEvent) AggregateID() string   { return e.aggregateID }
func (e baseEvent) OccurredOn() time.Time { return e.occurredOn }

// OrderPlacedEvent records a successfully created order.
type OrderPlacedEvent struct {
	baseEvent
	UserID      int64
	TotalAmount int64
	Currency    string
}

func NewOrderPlacedEvent(orderExternalID string, userID int64, total shared.Money) OrderPlacedEvent {
	return OrderPlacedEvent{
		baseEvent:   baseEvent{name: EventOrderPlaced, aggregateID: orderExternalID, occurredOn: time.Now()},
		UserID:      userID,
		TotalAmount: total.Amount(),
		Currency:    total.Currency(),
	}
}

func (e OrderPlacedEvent) Payload() map[string]any {
	return map[string]any{
		"order_id":     e.AggregateID(),
		"user_id":      e.UserID,
		"total_amount": e.TotalAmount,
		"currency":     e.Currency,
	}
}

// OrderUpdatedEvent records a partial update to an order.
type OrderUpdatedEvent struct {
	baseEvent
	Status string
}

func NewOrderUpdatedEvent(orderExternalID, status string) OrderUpdatedEvent {
	return OrderUpdatedEvent{
		baseEvent: baseEvent{name: EventOrderUpdated, aggregateID: orderExternalID, occurredOn: time.Now()},
		Status:    status,
	}
}

func (e OrderUpdatedEvent) Payload() map[string]any {
	return map[string]any{"order_id": e.AggregateID(), "status": e.Status}
}

// OrderDeletedEvent records a soft delete.
type OrderDeletedEvent struct {
	baseEvent
}

func NewOrderDeletedEvent(orderExternalID string) OrderDeletedEvent {
	return OrderDeletedEvent{
		baseEvent: baseEvent{name: EventOrderDeleted, aggregateID: orderExternalID, occurredOn: time.Now()},
	}
}

func (e OrderDeletedEvent) Payload() map[string]any {
	return map[string]any{"order_id": e.AggregateID()}
}

// SubOrderStatusChangedEvent records one fulfilment step of a sub-order.
type SubOrderStatusChangedEvent struct {
	baseEvent
	SubOrderExternalID string
	From               Status
	To                 Status
}

func NewSubOrderStatusChangedEvent(orderExternalID, subOrderExternalID string, from, to Status) SubOrderStatusChangedEvent {
	return SubOrderStatusChangedEvent{
		baseEvent:          baseEvent{name: EventSubOrderStatusChange, aggregateID: orderExternalID, occurredOn: time.Now()},
		SubOrderExternalID: subOrderExternalID,
		From:               from,
		To:                 to,
	}
}

func (e SubOrderStatusChangedEvent) Payload() map[string]any {
	return map[string]any{
		"order_id":     e.AggregateID(),
		"sub_order_id": e.SubOrderExternalID,
		"from":         string(e.From),
		"to":           string(e.To),
	}
}

// MessagePostedEvent records a new message on an order's thread.
type MessagePostedEvent struct {
	baseEvent
	MessageExternalID string
	SenderID          *int64
}

func NewMessagePostedEvent(orderExternalID, messageExternalID string, senderID *int64) MessagePostedEvent {
	return MessagePostedEvent{
		baseEvent:         baseEvent{name: EventMessagePosted, aggregateID: orderExternalID, occurredOn: time.Now()},
		MessageExternalID: messageExternalID,
		SenderID:          senderID,
	}
}

func (e MessagePostedEvent) Payload() map[string]any {
	payload := map[string]any{
		"order_id":   e.AggregateID(),
		"message_id": e.MessageExternalID,
	}
	if e.SenderID != nil {
		payload["sender_id"] = *e.SenderID
	}
	return payload
}

var (
	_ shared.DomainEvent    = OrderPlacedEvent{}
	_ shared.EventPayloader = OrderPlacedEvent{}
	_ shared.DomainEvent    = SubOrderStatusChangedEvent{}
	_ shared.EventPayloader = MessagePostedEvent{}
)
