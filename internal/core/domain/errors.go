package domain

import (
	"errors"
	"fmt"
)

// The closed domain-error set. Everything the core hands to the API layer is
// one of these (or wraps one of these); raw driver errors never cross that
// boundary except inside a StoreError.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrWrongPassword    = errors.New("wrong password")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrDisplayNameTaken = errors.New("business display name already exists")

	// ErrTokenMissing means no credential was supplied at all, which the
	// middleware may treat differently from a credential that was rejected.
	ErrTokenMissing = errors.New("auth token missing")

	// ErrTokenInvalid covers both a bad signature and an expired token.
	// The two causes are intentionally indistinguishable to the client.
	ErrTokenInvalid = errors.New("auth token invalid or expired")

	ErrTooManyLoginAttempts = errors.New("too many login attempts")
)

// ValidationError rejects a request before any storage access. Reason is
// safe to echo back to the client.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// StoreError is an infrastructure failure or a storage invariant violation.
// Its cause is logged server-side and never shown to the client.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	if e.Cause == nil {
		return "store failure: " + e.Op
	}
	return fmt.Sprintf("store failure: %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// Storef wraps cause as a StoreError for operation op.
func Storef(op string, cause error) *StoreError {
	return &StoreError{Op: op, Cause: cause}
}
