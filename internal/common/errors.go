// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Ledger error taxonomy. Every error returned by the storage and ledger layers wraps exactly
// one of these, so callers can branch with errors.Is.
var (
	// ErrValidation means the caller supplied structurally invalid input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means a referenced identifier does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a write affected zero rows where one was expected.
	ErrConflict = errors.New("conflict")
	// ErrStorage means the underlying store failed.
	ErrStorage = errors.New("storage failure")
)

// Conflict refinements.
var (
	// ErrStaleBalance means an account balance changed between read and write.
	ErrStaleBalance = fmt.Errorf("%w: balance changed concurrently", ErrConflict)
	// ErrInUse means an account or category is still referenced by transactions.
	ErrInUse = fmt.Errorf("%w: still referenced by transactions", ErrConflict)
)

// Configuration errors.
var (
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Validationf builds an ErrValidation with a formatted reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds an ErrNotFound with a formatted reason.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Storage wraps a driver error so that both ErrStorage and the original error match.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
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

// Explain turns a ledger error into a UserError with a message matching its class.
// Errors outside the taxonomy are returned unchanged.
func Explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation):
		return NewUserError("invalid input", err)
	case errors.Is(err, ErrNotFound):
		return NewUserError("no such record", err)
	case errors.Is(err, ErrInUse):
		return NewUserError("record is still in use", err)
	case errors.Is(err, ErrConflict):
		return NewUserError("the record changed underneath us, nothing was written", err)
	case errors.Is(err, ErrStorage):
		return NewUserError("database error, nothing was written", err)
	default:
		return err
	}
}

// IsRetryable determines if an error should trigger a retry by the caller.
// Only stale balances qualify: the unit of work was rolled back and replaying it is safe.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrStaleBalance) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
