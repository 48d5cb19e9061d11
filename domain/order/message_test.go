package order

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumapp/marketplace/domain/shared"
)

func int64ptr(v int64) *int64 { return &v }

func TestNewMessage(t *testing.T) {
	m, err := NewMessage(10, MessageSpec{
		SenderID:    int64ptr(7),
		RecipientID: int64ptr(8),
		Body:        "  Is the mug dishwasher safe?  ",
		Attachments: json.RawMessage(`[{"url":"https://cdn.example.com/mug.jpg"}]`),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), m.OrderID())
	require.NotNil(t, m.SenderID())
	assert.Equal(t, int64(7), *m.SenderID())
	require.NotNil(t, m.RecipientID())
	assert.Equal(t, int64(8), *m.RecipientID())
	assert.Equal(t, "Is the mug dishwasher safe?", m.Body())
	assert.JSONEq(t, `[{"url":"https://cdn.example.com/mug.jpg"}]`, string(m.Attachments()))
	assert.NotEmpty(t, m.ExternalID())
	assert.False(t, m.IsRead())
	assert.Nil(t, m.ReadAt())
}

func TestNewMessageWithoutParticipants(t *testing.T) {
	// System notices carry neither sender nor recipient.
	m, err := NewMessage(10, MessageSpec{Body: "Your order has shipped."})
	require.NoError(t, err)

	assert.Nil(t, m.SenderID())
	assert.Nil(t, m.RecipientID())
	assert.Nil(t, m.Attachments())
}

func TestNewMessageValidation(t *testing.T) {
	_, err := NewMessage(0, MessageSpec{SenderID: int64ptr(7), Body: "hello"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewMessage(10, MessageSpec{SenderID: int64ptr(0), Body: "hello"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewMessage(10, MessageSpec{RecipientID: int64ptr(-1), Body: "hello"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewMessage(10, MessageSpec{SenderID: int64ptr(7), Body: "   "})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewMessage(10, MessageSpec{SenderID: int64ptr(7), Body: strings.Repeat("a", MaxMessageLength+1)})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	// Exactly at the limit is fine.
	_, err = NewMessage(10, MessageSpec{SenderID: int64ptr(7), Body: strings.Repeat("a", MaxMessageLength)})
	assert.NoError(t, err)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	m, err := NewMessage(10, MessageSpec{SenderID: int64ptr(7), Body: "hello"})
	require.NoError(t, err)

	m.MarkRead()
	require.True(t, m.IsRead())
	require.NotNil(t, m.ReadAt())
	first := *m.ReadAt()

	m.MarkRead()
	assert.Equal(t, first, *m.ReadAt())
}

func TestReconstructMessage(t *testing.T) {
	m, err := NewMessage(10, MessageSpec{
		SenderID:    int64ptr(7),
		RecipientID: int64ptr(8),
		Body:        "hello",
		Attachments: json.RawMessage(`[]`),
	})
	require.NoError(t, err)
	m.MarkRead()

	loaded := ReconstructMessage(MessageReconstructionDTO{
		ID:          55,
		ExternalID:  m.ExternalID(),
		OrderID:     m.OrderID(),
		SenderID:    m.SenderID(),
		RecipientID: m.RecipientID(),
		Body:        m.Body(),
		Attachments: m.Attachments(),
		IsRead:      m.IsRead(),
		CreatedAt:   m.CreatedAt(),
		ReadAt:      m.ReadAt(),
	})

	assert.Equal(t, int64(55), loaded.ID())
	assert.Equal(t, m.ExternalID(), loaded.ExternalID())
	assert.Equal(t, m.SenderID(), loaded.SenderID())
	assert.Equal(t, m.RecipientID(), loaded.RecipientID())
	assert.Equal(t, m.Attachments(), loaded.Attachments())
	assert.True(t, loaded.IsRead())
	assert.Equal(t, m.ReadAt(), loaded.ReadAt())
}
