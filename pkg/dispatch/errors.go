package dispatch

import "fmt"

// ExhaustedError is returned when the attempt budget runs out on
// retriable failures. It carries the last classified provider error.
type ExhaustedError struct {
	// Attempts is the number of provider calls made.
	Attempts int

	// LastErr is the error from the final attempt.
	LastErr error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("max retry attempts (%d) reached, last error: %v", e.Attempts, e.LastErr)
}

// Unwrap returns the last attempt's error for error chain support.
func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}
