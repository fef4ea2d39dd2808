// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Pipeline errors.
	ErrSchema      = errors.New("schema error")
	ErrComputation = errors.New("computation error")
	ErrNoAccounts  = errors.New("portfolio has no accounts")

	// Lookup errors.
	ErrNotFound = errors.New("not found")

	// Narrative errors.
	ErrGenerationFailed = errors.New("narrative generation failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// SchemaError reports input that cannot satisfy the canonical schema.
// It is fatal to a pipeline invocation; the caller must fix the input.
type SchemaError struct {
	Column string
	Reason string
	Row    int
}

func (e *SchemaError) Error() string {
	switch {
	case e.Column != "" && e.Row > 0:
		return fmt.Sprintf("schema error: row %d, column %q: %s", e.Row, e.Column, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("schema error: column %q: %s", e.Column, e.Reason)
	default:
		return "schema error: " + e.Reason
	}
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// NewSchemaError creates a schema error for a column (may be empty).
func NewSchemaError(column, reason string) error {
	return &SchemaError{Column: column, Reason: reason}
}

// ComputationError reports a violated arithmetic or enumeration invariant.
type ComputationError struct {
	Op     string
	Reason string
	ID     int
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation error in %s for account %d: %s", e.Op, e.ID, e.Reason)
}

func (e *ComputationError) Unwrap() error {
	return ErrComputation
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
