package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource (e.g. the root directory to index) is not found.
	ErrNotFound = errors.New("not found")
	// ErrEmbedding is returned when the embedding provider call fails.
	ErrEmbedding = errors.New("embedding error")
	// ErrStore is returned when a vector collection create, upsert or search fails.
	ErrStore = errors.New("store error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Classify wraps err so that errors.Is matches both kind and the original error.
// A nil err yields nil.
func Classify(kind error, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
