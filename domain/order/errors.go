package order

import (
	"errors"
	"fmt"

	"github.com/lumapp/marketplace/domain/shared"
)

// Sentinel errors for the order subdomain, checked with errors.Is.
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrSubOrderNotFound = errors.New("sub-order not found")
	ErrMessageNotFound  = errors.New("order message not found")

	// ErrConcurrentModification is returned when a compare-and-swap on the
	// version column hits a row already changed by another transaction.
	ErrConcurrentModification = errors.New("order was modified by another transaction, please retry")

	ErrEmptySubOrders          = errors.New("order must have at least one sub-order")
	ErrEmptyItems              = errors.New("sub-order must have at least one item")
	ErrInvalidQuantity         = errors.New("quantity must be positive")
	ErrInvalidUnitPrice        = errors.New("unit price must be positive")
	ErrNegativeShipping        = errors.New("shipping cost cannot be negative")
	ErrNegativeFee             = errors.New("marketplace fee cannot be negative")
	ErrNonPositiveSellerNet    = errors.New("seller net must be positive")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// orderDomainError couples a sentinel with context and a creation-point
// stack. Implements error, Unwrap and shared.Stacker.
type orderDomainError struct {
	sentinel error
	field    string
	message  string
	stack    []uintptr
}

func (e *orderDomainError) Error() string { return e.message }
func (e *orderDomainError) Unwrap() error { return e.sentinel }
func (e *orderDomainError) Stack() []string {
	return shared.FormatStack(e.stack)
}

func NewOrderNotFoundError(id string) error {
	return &orderDomainError{
		sentinel: ErrOrderNotFound,
		message:  "order not found: " + id,
		stack:    shared.CaptureStack(3),
	}
}

func NewSubOrderNotFoundError(id string) error {
	return &orderDomainError{
		sentinel: ErrSubOrderNotFound,
		message:  "sub-order not found: " + id,
		stack:    shared.CaptureStack(3),
	}
}

func NewMessageNotFoundError(id string) error {
	return &orderDomainError{
		sentinel: ErrMessageNotFound,
		message:  "order message not found: " + id,
		stack:    shared.CaptureStack(3),
	}
}

func NewConcurrentModificationError(id string) error {
	return &orderDomainError{
		sentinel: ErrConcurrentModification,
		message:  "order " + id + " was modified by another transaction, please retry",
		stack:    shared.CaptureStack(3),
	}
}

func NewInvalidStatusError(raw string) error {
	return &orderDomainError{
		sentinel: fmt.Errorf("%w: %w", shared.ErrInvalidInput, ErrInvalidStatus),
		field:    "status",
		message:  fmt.Sprintf("status %q is not one of %v", raw, Statuses),
		stack:    shared.CaptureStack(3),
	}
}

func NewInvalidTransitionError(from, to Status) error {
	return &orderDomainError{
		sentinel: ErrInvalidStatusTransition,
		field:    "status",
		message:  fmt.Sprintf("cannot transition from %s to %s", from, to),
		stack:    shared.CaptureStack(3),
	}
}

// validationError wraps a sentinel as ErrInvalidInput so the API layer maps
// the whole family to a 400 without enumerating every sentinel.
func validationError(sentinel error, field, message string) error {
	return &orderDomainError{
		sentinel: fmt.Errorf("%w: %w", shared.ErrInvalidInput, sentinel),
		field:    field,
		message:  message,
		stack:    shared.CaptureStack(4),
	}
}
