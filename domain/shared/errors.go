/*
Package shared holds the building blocks common to every subdomain: the Money
value object, sentinel errors with captured stacks, domain events and the
unit-of-work contract.

Error design: subdomains define sentinel errors for errors.Is checks and wrap
them in structured errors that capture the call stack at creation time. The
stack is formatted lazily, only when a log line actually needs it. HTTP
concerns never appear here.
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Sentinel errors shared by all subdomains. They carry no context of their
// own; use the constructors below to attach entity and message.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state transition")
	ErrPersistence  = errors.New("persistence failure")
)

// DomainError is a structured error carrying business context and the stack
// of its creation point. It supports errors.Is via Unwrap.
type DomainError struct {
	Err     error  // underlying sentinel
	Entity  string // e.g. "order", "store"
	Field   string // optional, set for validation errors
	Message string

	stack []uintptr
}

func (e *DomainError) Error() string { return e.Message }
func (e *DomainError) Unwrap() error { return e.Err }

// Stack formats the captured frames. Only called when logging.
func (e *DomainError) Stack() []string { return FormatStack(e.stack) }

// Stacker is implemented by errors that can report where they were created.
// The API layer uses it to log the origination point of a failure.
type Stacker interface {
	Stack() []string
}

// CaptureStack records the current call stack.
// skip is usually 3: runtime.Callers, CaptureStack, and the constructor.
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack renders captured frames, dropping runtime internals and
// keeping at most 10 frames.
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) > 10 {
			break
		}
	}
	return result
}

// NewNotFoundError reports that no live record matches the identifier.
func NewNotFoundError(entity, id string) error {
	msg := entity + " not found"
	if id != "" {
		msg = entity + " " + id + " not found"
	}
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Message: msg,
		stack:   CaptureStack(3),
	}
}

// NewConflictError reports a uniqueness or concurrency conflict.
func NewConflictError(entity, message string) error {
	return &DomainError{
		Err:     ErrConflict,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewValidationError reports malformed or out-of-range input.
func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// NewPersistenceError wraps a storage-layer failure. Kept distinct from
// validation errors so callers can tell "fix your request" from "retry later".
func NewPersistenceError(entity string, cause error) error {
	return &DomainError{
		Err:     fmt.Errorf("%w: %w", ErrPersistence, cause),
		Entity:  entity,
		Message: entity + " persistence failure",
		stack:   CaptureStack(3),
	}
}
