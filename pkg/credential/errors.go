package credential

import (
	"errors"
	"fmt"
)

// ErrNoneEligible is returned by the Selector when every credential
// matching the filter is inside its cooldown window (or none exist).
// It is terminal for the current request: retrying cannot help until a
// cooldown expires.
var ErrNoneEligible = errors.New("no available tokens")

// StoreError wraps a datastore failure. It is fatal to the current
// request but never to the process.
type StoreError struct {
	// Op is the store operation that failed (e.g. "list_eligible").
	Op string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("credential store %s failed: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NotFoundError is returned by administrative operations when the
// referenced credential does not exist.
type NotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("credential %q not found", e.ID)
}
