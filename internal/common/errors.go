// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Store errors.
	ErrStoreUnavailable = errors.New("flashcard store unavailable")
	ErrDeckUnresolvable = errors.New("deck missing and could not be created")
	ErrWriteRejected    = errors.New("store rejected note")
	ErrNoteNotFound     = errors.New("note not found")

	// Resolution errors.
	ErrActionFailed     = errors.New("resolution action failed")
	ErrNoRemoteIdentity = errors.New("item has no note in the store")
	ErrActionInFlight   = errors.New("an action is already running for this item")

	// Pipeline errors.
	ErrRunInFlight = errors.New("an import is already running for this profile")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

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
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
