// Package errors defines the application error type the HTTP layer renders.
// Stable machine-readable codes decouple clients from error message text.
package errors

import (
	"errors"
	"net/http"

	"github.com/lumapp/marketplace/domain/order"
	"github.com/lumapp/marketplace/domain/shared"
	"github.com/lumapp/marketplace/domain/store"
)

// ErrorCode is a stable machine-readable identifier for an error family.
type ErrorCode string

const (
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"
	CodePersistence    ErrorCode = "PERSISTENCE_ERROR"

	CodeOrderNotFound     ErrorCode = "ORDER_NOT_FOUND"
	CodeSubOrderNotFound  ErrorCode = "SUB_ORDER_NOT_FOUND"
	CodeMessageNotFound   ErrorCode = "MESSAGE_NOT_FOUND"
	CodeInvalidTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	CodeConcurrentModify  ErrorCode = "CONCURRENT_MODIFICATION"
	CodeSlugTaken         ErrorCode = "SLUG_TAKEN"
)

// AppError carries a code, a human message, and the wrapped cause.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return string(e.Code) + ": " + e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode maps the error code to the response status. This is the
// only place domain failures turn into HTTP semantics.
func (e *AppError) HTTPStatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound, CodeOrderNotFound, CodeSubOrderNotFound, CodeMessageNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeConcurrentModify, CodeSlugTaken:
		return http.StatusConflict
	case CodeTooManyRequest:
		return http.StatusTooManyRequests
	case CodeInvalidTransition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError      { return New(CodeBadRequest, message) }
func NotFound(message string) *AppError        { return New(CodeNotFound, message) }
func Internal(message string) *AppError        { return New(CodeInternal, message) }
func Conflict(message string) *AppError        { return New(CodeConflict, message) }
func TooManyRequests(message string) *AppError { return New(CodeTooManyRequest, message) }
func Validation(message string) *AppError      { return New(CodeValidation, message) }

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// MapDomainError translates a domain failure into an AppError by sentinel
// identity, never by matching message text.
func MapDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		return Wrap(err, CodeOrderNotFound, "order not found")
	case errors.Is(err, order.ErrSubOrderNotFound):
		return Wrap(err, CodeSubOrderNotFound, "sub-order not found")
	case errors.Is(err, order.ErrMessageNotFound):
		return Wrap(err, CodeMessageNotFound, "message not found")
	case errors.Is(err, order.ErrInvalidStatusTransition):
		return Wrap(err, CodeInvalidTransition, err.Error())
	case errors.Is(err, order.ErrConcurrentModification):
		return Wrap(err, CodeConcurrentModify, "order was modified concurrently, retry the request")
	case errors.Is(err, store.ErrSlugTaken):
		return Wrap(err, CodeSlugTaken, "store slug already taken")
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidState):
		return Wrap(err, CodeValidation, err.Error())
	case errors.Is(err, shared.ErrNotFound):
		return Wrap(err, CodeNotFound, err.Error())
	case errors.Is(err, shared.ErrConflict):
		return Wrap(err, CodeConflict, err.Error())
	case errors.Is(err, shared.ErrPersistence):
		return Wrap(err, CodePersistence, "storage operation failed")
	default:
		return Wrap(err, CodeInternal, "internal server error")
	}
}
