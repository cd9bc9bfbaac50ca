// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrAborted indicates the caller cancelled a request while it was waiting to retry
	ErrAborted = errors.New("request aborted")

	// ErrInvalidConfig indicates a decoded retry configuration failed validation
	ErrInvalidConfig = errors.New("invalid retry config")

	// ErrNilResponse indicates a transport returned neither a response nor an error
	ErrNilResponse = errors.New("transport returned nil response")
)

// AbortError is returned when cancellation is observed at a retry wait gate.
// It unwraps to the context error that caused the abort.
type AbortError struct {
	// Attempt is the 1-based number of the attempt that was about to be retried
	Attempt int

	// URL identifies the request target
	URL string

	// Cause is the context error (context.Canceled or context.DeadlineExceeded)
	Cause error
}

// Error implements the error interface
func (e *AbortError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s after attempt %d: %s", ErrAborted, e.Attempt, e.URL)
	}
	return fmt.Sprintf("%s after attempt %d: %s: %v", ErrAborted, e.Attempt, e.URL, e.Cause)
}

// Unwrap returns the underlying context error
func (e *AbortError) Unwrap() error {
	return e.Cause
}

// Is reports ErrAborted as a match so callers need not type-assert
func (e *AbortError) Is(target error) bool {
	return target == ErrAborted
}

// NewAbortError creates an abort error
func NewAbortError(attempt int, url string, cause error) *AbortError {
	return &AbortError{
		Attempt: attempt,
		URL:     url,
		Cause:   cause,
	}
}

// IsAborted checks if an error is an abort error
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted)
}
