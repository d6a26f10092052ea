package helpers

import (
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type StockTrackerError struct {
	Message string
	Cause   error
}

func (e *StockTrackerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StockTrackerError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// ValidationError signals missing or invalid input (HTTP 400). Missing holds
// the names of every absent required field so the caller sees all of them at
// once.
type ValidationError struct {
	StockTrackerError
	Missing []string
}

func NewValidationError(message string, missing []string) *ValidationError {
	return &ValidationError{
		StockTrackerError: StockTrackerError{Message: message},
		Missing:           missing,
	}
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s (missing: %s)", e.Message, strings.Join(e.Missing, ", "))
	}
	return e.StockTrackerError.Error()
}

// -----------------------------------------------------------------------------

// NotFoundError signals an unknown identifier (HTTP 404).
type NotFoundError struct{ StockTrackerError }

func NewNotFoundError(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{StockTrackerError{Message: fmt.Sprintf(format, args...)}}
}

// -----------------------------------------------------------------------------

// UpstreamError signals that the quote provider failed or returned nothing
// usable (HTTP 502 on the lookup path).
type UpstreamError struct{ StockTrackerError }

func NewUpstreamError(message string, cause error) *UpstreamError {
	return &UpstreamError{StockTrackerError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------

// StoreError signals a persistence failure (HTTP 500).
type StoreError struct{ StockTrackerError }

func NewStoreError(message string, cause error) *StoreError {
	return &StoreError{StockTrackerError{Message: message, Cause: cause}}
}
