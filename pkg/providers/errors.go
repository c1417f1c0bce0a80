package providers

import (
	"errors"
	"fmt"
	"time"
)

// The orchestrator's retry policy consumes exactly four failure classes:
// rate-limited and transient outcomes are retriable with a different
// credential; auth and permanent outcomes terminate the request.

// AuthError means the upstream provider rejected the credential
// (HTTP 401 or 403). Not retriable: a rejected credential should not be
// retried blindly, though it remains selectable after its cooldown.
type AuthError struct {
	// Provider is the provider tag that rejected authentication.
	Provider string

	// Message is the error body from the provider.
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q rejected credential: %s", e.Provider, e.Message)
}

// RateLimitError means the upstream signaled quota exhaustion
// (HTTP 429). Retriable with a different credential.
type RateLimitError struct {
	// Provider is the provider tag that rate limited the request.
	Provider string

	// RetryAfter is the provider-suggested wait, if given.
	RetryAfter time.Duration

	// Message is the error body from the provider.
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limited (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limited: %s", e.Provider, e.Message)
}

// TransientError covers network failures, timeouts, 5xx responses and
// unparseable upstream replies. Plausibly retriable.
type TransientError struct {
	// Provider is the provider tag where the failure occurred.
	Provider string

	// StatusCode is the HTTP status (0 for network-level failures).
	StatusCode int

	// Message describes the failure.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q transient error (status %d): %s",
			e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q transient error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransientError) Unwrap() error {
	return e.Cause
}

// PermanentError covers malformed requests and 4xx responses other than
// auth and rate limiting. Not retriable: the same request will fail the
// same way against any credential.
type PermanentError struct {
	// Provider is the provider tag that returned the error.
	Provider string

	// StatusCode is the HTTP status.
	StatusCode int

	// Message is the error body from the provider.
	Message string
}

// Error implements the error interface.
func (e *PermanentError) Error() string {
	return fmt.Sprintf("provider %q permanent error (status %d): %s",
		e.Provider, e.StatusCode, e.Message)
}

// Retryable reports whether the orchestrator may retry after this
// failure: true for RateLimitError and TransientError, false for
// AuthError, PermanentError and everything unclassified.
func Retryable(err error) bool {
	var rateLimited *RateLimitError
	if errors.As(err, &rateLimited) {
		return true
	}
	var transient *TransientError
	return errors.As(err, &transient)
}
