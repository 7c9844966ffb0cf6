// Package errors provides structured error types for the outreach agent.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the control-plane failure taxonomy.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrAuthFailure  = errors.New("authentication failed")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflicting state")
	ErrUnavailable  = errors.New("service unavailable")
)

// StoreError wraps a durability-layer failure. The original cause is kept for
// operator logs; callers only ever see the operation name.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err as a durability failure for operation op.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// IsClientError returns true for errors caused by the caller rather than the
// service: these map to 4xx responses and are safe to show verbatim.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrAuthFailure) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict)
}
