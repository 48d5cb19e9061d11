package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumapp/marketplace/domain/order"
	"github.com/lumapp/marketplace/domain/shared"
	"github.com/lumapp/marketplace/domain/store"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeBadRequest, http.StatusBadRequest},
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeOrderNotFound, http.StatusNotFound},
		{CodeSubOrderNotFound, http.StatusNotFound},
		{CodeMessageNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeConcurrentModify, http.StatusConflict},
		{CodeSlugTaken, http.StatusConflict},
		{CodeInvalidTransition, http.StatusUnprocessableEntity},
		{CodeTooManyRequest, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{CodePersistence, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.code, "x").HTTPStatusCode(), string(tt.code))
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{"order not found", order.NewOrderNotFoundError("42"), CodeOrderNotFound},
		{"sub-order not found", order.NewSubOrderNotFoundError("42"), CodeSubOrderNotFound},
		{"message not found", order.NewMessageNotFoundError("42"), CodeMessageNotFound},
		{"invalid transition", order.NewInvalidTransitionError(order.StatusPending, order.StatusDelivered), CodeInvalidTransition},
		{"concurrent modification", order.NewConcurrentModificationError("42"), CodeConcurrentModify},
		{"slug taken", fmt.Errorf("create: %w", store.ErrSlugTaken), CodeSlugTaken},
		{"validation", shared.NewValidationError("order", "user_id", "must be positive"), CodeValidation},
		{"invalid status", order.NewInvalidStatusError("bogus"), CodeValidation},
		{"generic not found", shared.NewNotFoundError("store", "9"), CodeNotFound},
		{"conflict", shared.NewConflictError("user", "email already registered"), CodeConflict},
		{"persistence", shared.NewPersistenceError("order", fmt.Errorf("connection refused")), CodePersistence},
		{"unknown", fmt.Errorf("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := MapDomainError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestMapDomainErrorPassthrough(t *testing.T) {
	assert.Nil(t, MapDomainError(nil))

	// An AppError already carries its mapping and is returned as is.
	original := Conflict("already exists")
	mapped := MapDomainError(fmt.Errorf("wrapped: %w", original))
	assert.Same(t, original, mapped)
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("gone"))
	assert.True(t, Is(err, CodeNotFound))
	assert.False(t, Is(err, CodeConflict))
	assert.False(t, Is(fmt.Errorf("plain"), CodeNotFound))
}
