package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested value does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidDate indicates a malformed or impossible calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// Authentication errors.

	// ErrNoClientID indicates no OAuth client id is configured.
	ErrNoClientID = errors.New("no OAuth client ID configured")

	// ErrNotAuthenticated indicates an operation that requires valid
	// tokens was attempted without them.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAlreadyAuthenticated indicates an authorization flow was
	// started while valid tokens are stored. Sign out first.
	ErrAlreadyAuthenticated = errors.New("already authenticated")

	// ErrAuthExpired indicates the authentication has expired and
	// refresh failed. Forces the session back to unauthenticated.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrCSRFMismatch indicates the OAuth state parameter did not match
	// the stored value. The callback is always aborted.
	ErrCSRFMismatch = errors.New("state mismatch, possible CSRF")

	// ErrVerifierMissing indicates no PKCE code verifier was found for
	// a callback. The user must restart authentication.
	ErrVerifierMissing = errors.New("code verifier missing, restart authentication")

	// Storage errors.

	// ErrDecryptFailed indicates stored data could not be authenticated
	// or decrypted. Treated as data corruption: the secret is discarded.
	ErrDecryptFailed = errors.New("decryption failed")
)

// RateLimitError indicates the remote API rejected or throttled a
// request. It is retryable and may carry the provider's retry-after
// hint.
type RateLimitError struct {
	// StatusCode is the HTTP status (429 or 5xx).
	StatusCode int
	// RetryAfter is the provider's suggested wait, zero if absent.
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (status %d, retry after %s)", e.StatusCode, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited (status %d)", e.StatusCode)
}

// IsRateLimited returns true if err is or wraps a RateLimitError.
func IsRateLimited(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}
