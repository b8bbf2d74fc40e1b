// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - ValidationError carries the offending field and is checked with errors.As
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import (
	"errors"
	"fmt"
)

// Store errors.
var (
	// ErrNotFound indicates a record or foreign reference does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness constraint was violated.
	ErrConflict = errors.New("already exists")
)

// Queue errors.
var (
	// ErrInvalidTransition indicates an illegal queue state change. The
	// queue entry is left exactly as it was before the attempt.
	ErrInvalidTransition = errors.New("invalid queue transition")
)

// Collaborator errors.
var (
	// ErrFetchFailed indicates the transcript fetcher could not produce a
	// video. It is recorded via the queue's fail operation, never stored
	// as a partial record.
	ErrFetchFailed = errors.New("transcript fetch failed")

	// ErrIndexerDisabled indicates the full-text indexer is not configured.
	ErrIndexerDisabled = errors.New("indexer disabled")

	// ErrIndexerUnavailable indicates the full-text indexer returned a
	// server error.
	ErrIndexerUnavailable = errors.New("indexer unavailable")
)

// ValidationError reports a malformed, missing, or out-of-vocabulary field.
// The whole write is rejected; no subset of fields is applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// Validationf builds a ValidationError for the given field.
func Validationf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError

	return errors.As(err, &ve)
}

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
