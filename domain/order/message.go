package order

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumapp/marketplace/domain/shared"
)

// MaxMessageLength bounds the body of an order message.
const MaxMessageLength = 4000

// Message is one entry in the conversation attached to an order. Messages
// belong to the order, not to a sub-order, so buyer and sellers share a
// single thread per purchase. Sender and recipient are optional user
// references; system notices carry neither. Attachments are an opaque
// structured blob, stored as-is.
type Message struct {
	id          int64
	externalID  string
	orderID     int64
	senderID    *int64
	recipientID *int64
	body        string
	attachments json.RawMessage
	isRead      bool
	createdAt   time.Time
	readAt      *time.Time
}

// MessageSpec is the payload for posting a message on an order's thread.
type MessageSpec struct {
	SenderID    *int64
	RecipientID *int64
	Body        string
	Attachments json.RawMessage
}

// NewMessage validates and builds a message for an existing order.
func NewMessage(orderID int64, spec MessageSpec) (*Message, error) {
	if orderID <= 0 {
		return nil, validationError(shared.ErrInvalidInput, "order_id", "order_id must be positive")
	}
	if spec.SenderID != nil && *spec.SenderID <= 0 {
		return nil, validationError(shared.ErrInvalidInput, "from_user_id", "from_user_id must be positive")
	}
	if spec.RecipientID != nil && *spec.RecipientID <= 0 {
		return nil, validationError(shared.ErrInvalidInput, "to_user_id", "to_user_id must be positive")
	}
	body := strings.TrimSpace(spec.Body)
	if body == "" {
		return nil, validationError(shared.ErrInvalidInput, "body", "message body cannot be empty")
	}
	if len(body) > MaxMessageLength {
		return nil, validationError(shared.ErrInvalidInput, "body", "message body is too long")
	}
	return &Message{
		externalID:  uuid.NewString(),
		orderID:     orderID,
		senderID:    spec.SenderID,
		recipientID: spec.RecipientID,
		body:        body,
		attachments: spec.Attachments,
		isRead:      false,
		createdAt:   time.Now(),
	}, nil
}

// BindIdentity attaches the database-assigned id after the insert commits.
func (m *Message) BindIdentity(id int64) { m.id = id }

// MarkRead flips the read flag. Marking an already read message again is a
// no-op and keeps the original read timestamp.
func (m *Message) MarkRead() {
	if m.isRead {
		return
	}
	now := time.Now()
	m.isRead = true
	m.readAt = &now
}

func (m *Message) ID() int64                    { return m.id }
func (m *Message) ExternalID() string           { return m.externalID }
func (m *Message) OrderID() int64               { return m.orderID }
func (m *Message) SenderID() *int64             { return m.senderID }
func (m *Message) RecipientID() *int64          { return m.recipientID }
func (m *Message) Body() string                 { return m.body }
func (m *Message) Attachments() json.RawMessage { return m.attachments }
func (m *Message) IsRead() bool                 { return m.isRead }
func (m *Message) CreatedAt() time.Time         { return m.createdAt }
func (m *Message) ReadAt() *time.Time           { return m.readAt }

// MessageReconstructionDTO rebuilds a Message from persisted state.
type MessageReconstructionDTO struct {
	ID          int64
	ExternalID  string
	OrderID     int64
	SenderID    *int64
	RecipientID *int64
	Body        string
	Attachments json.RawMessage
	IsRead      bool
	CreatedAt   time.Time
	ReadAt      *time.Time
}

// ReconstructMessage materializes a message from stored rows.
func ReconstructMessage(dto MessageReconstructionDTO) Message {
	return Message{
		id:          dto.ID,
		externalID:  dto.ExternalID,
		orderID:     dto.OrderID,
		senderID:    dto.SenderID,
		recipientID: dto.RecipientID,
		body:        dto.Body,
		attachments: dto.Attachments,
		isRead:      dto.IsRead,
		createdAt:   dto.CreatedAt,
		readAt:      dto.ReadAt,
	}
}
