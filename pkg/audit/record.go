package audit

import (
	"context"
	"time"
)

// Entry is one recorded dispatch attempt.
type Entry struct {
	// ID is a unique record identifier (UUID).
	ID string

	// CredentialID identifies the credential used. Never the secret.
	CredentialID string

	// ProviderType is the provider tag of the credential.
	ProviderType string

	// SystemPrompt and Prompt are the inputs as sent upstream.
	SystemPrompt string
	Prompt       string

	// Outcome is the reply text on success, or "error: ..." on failure.
	Outcome string

	// CreatedAt is when the attempt completed.
	CreatedAt time.Time
}

// Storage persists audit entries. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Store persists one entry.
	Store(ctx context.Context, e *Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]*Entry, error)

	// Count returns the total number of stored entries.
	Count(ctx context.Context) (int64, error)

	// PruneBefore deletes entries created before the cutoff and returns
	// the number deleted.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases any resources held by the storage.
	Close() error
}
