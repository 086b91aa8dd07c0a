// Package common defines shared constants and sentinel errors used across
// passvault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Account errors.
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// Vault item errors. Missing and foreign items share one error on purpose.
	ErrNotFoundOrForbidden    = errors.New("item not found")
	ErrSecurityAnswerMismatch = errors.New("incorrect security answers")

	// Envelope errors.
	ErrMalformedEnvelope = errors.New("malformed envelope")
	ErrDecryptionFailure = errors.New("decryption failure")

	// Session token errors. Both collapse to ErrNotAuthenticated at the boundary.
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// IsTokenError reports whether err is one of the session token failures.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenExpired)
}
