/*
errors.go - Centralized error kinds

PURPOSE:
  Every core operation reports failure as one of four kinds. Callers
  (the HTTP layer, tests) branch on the kind with errors.Is and never
  on message text.

ERROR KINDS:
  ErrValidation   Malformed or missing input (empty name, end before start)
  ErrConflict     A second active leave period was requested
  ErrNotFound     Unknown person, or no active record to close
  ErrPersistence  The key-value store failed to read or write

STRUCTURED ERRORS:
  ValidationError, NotFoundError and PersistenceError carry context and
  unwrap to their sentinel. The domain conflict error lives in
  timeoff/errors.go because it carries the active leave record.

USAGE:
  if errors.Is(err, generic.ErrConflict) {
      // person is already on leave
  }

SEE ALSO:
  - store.go: ErrKeyNotFound for the persistence contract
  - timeoff/errors.go: ConflictError
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when an operation would open a second active period.
	ErrConflict = errors.New("conflict")

	// ErrNotFound is returned when a person or an active record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPersistence is returned when the underlying store fails.
	ErrPersistence = errors.New("persistence failure")

	// ErrKeyNotFound is returned by KVStore.Get for an absent key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidPeriod is returned when a period ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrCircuitOpen is returned by guarded stores while the breaker is open.
	ErrCircuitOpen = errors.New("store circuit open")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError is shorthand for &ValidationError{...}.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError identifies what was looked up.
type NotFoundError struct {
	Kind string // "person", "active leave"
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Kind + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// PersistenceError wraps a store failure with the operation that hit it.
// errors.Is matches both ErrPersistence and the underlying cause.
type PersistenceError struct {
	Op  string // "load", "save", "delete"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPersistence returns true if the store failed.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
