package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the executor.
var (
	// ErrRetryExhausted is returned when all retry attempts are used up.
	ErrRetryExhausted = errors.New("max retries exceeded")

	// ErrContextCancelled is returned when the context ends mid-request.
	ErrContextCancelled = errors.New("context cancelled")
)

// MarketError is a classified failure from the market endpoints.
type MarketError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *MarketError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("market %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("market %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *MarketError) Unwrap() error {
	return e.Err
}

// IsTerminal reports whether err carries a non-retryable error class.
func IsTerminal(err error) bool {
	var me *MarketError
	if errors.As(err, &me) {
		return !me.Class.Retryable()
	}
	return false
}
