package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Each represents a distinct outward failure class so
// integrations can map them to different client messaging.
var (
	// ErrEmptyQuestion is a client-input rejection; it never reaches the
	// embedding or index services.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrRetrievalUnavailable means the vector index could not be reached
	// or errored. There is no safe local fallback for retrieval.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrGenerationFailed means the generation backend errored during an
	// active call. Distinct from the unconfigured-backend degraded mode,
	// which is not an error.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrInvalidEmployee marks a record that cannot be indexed.
	ErrInvalidEmployee = errors.New("invalid employee record")
	// ErrNothingIndexed is returned when a bulk indexing run processes
	// zero records.
	ErrNothingIndexed = errors.New("no records indexed")
)

// ValidationError wraps a sentinel with field context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
