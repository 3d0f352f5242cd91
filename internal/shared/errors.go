// Package shared defines sentinel errors and small helpers used across the
// client and server layers of passkeep. Callers should use errors.Is to
// match these values.
package shared

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors (malformed input, uniqueness violations).
	ErrValidation    = errors.New("validation error")
	ErrAlreadyExists = errors.New("already exists")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// CSRF double-submit pair mismatch.
	ErrCSRFViolation = errors.New("csrf token mismatch")

	// Login attempt throttling.
	ErrRateLimited = errors.New("rate limited")

	// Client-side envelope decryption failure (tampering or wrong key).
	ErrDecryptionFailure = errors.New("decryption failure")
)
