package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// IsNotFound reports whether err has an ErrNotFound in its chain
func IsNotFound(err error) bool {
	var notFound *ErrNotFound
	return stderrors.As(err, &notFound)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict is returned when there's a conflict (e.g., idempotency)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrNotConfigured is returned when a feature's credentials are absent.
// The feature degrades to "not configured" instead of crashing the process.
type ErrNotConfigured struct {
	Feature string
}

func (e *ErrNotConfigured) Error() string {
	return fmt.Sprintf("%s is not configured", e.Feature)
}

// ErrProvider is returned when an external provider call fails at the HTTP
// level. Adapters surface this instead of letting opaque errors escape the
// call site.
type ErrProvider struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ErrProvider) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Body)
}

// ErrInvalidStateTransition is returned when an invalid state transition is attempted
type ErrInvalidStateTransition struct {
	From domain.FulfillmentStatus
	To   domain.FulfillmentStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}
