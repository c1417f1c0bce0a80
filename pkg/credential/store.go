package credential

import (
	"context"
	"time"
)

// Store is the durable mapping from credential identity to rotation state.
// It is the single shared mutable resource in the system; implementations
// must be safe for concurrent use.
//
// The dispatch path depends only on ListEligible and MarkUsed. The
// administrative Insert/All/Delete are used by the provisioning CLI;
// dispatch never creates or deletes credentials.
type Store interface {
	// ListEligible returns all credentials matching the optional provider
	// filter that are eligible at asOf, ordered by LastUsedAt ascending
	// with never-used credentials first. The ordering spreads load evenly
	// and prevents rarely-picked credentials from starving.
	ListEligible(ctx context.Context, filter []string, asOf time.Time) ([]*Credential, error)

	// MarkUsed atomically sets LastUsedAt for the credential with the
	// given id. Once MarkUsed returns, subsequent ListEligible calls
	// reflect the new cooldown window.
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error

	// Insert adds a new credential. Administrative use only.
	Insert(ctx context.Context, c *Credential) error

	// All returns every credential regardless of eligibility, ordered by
	// id. Administrative use only.
	All(ctx context.Context) ([]*Credential, error)

	// Delete removes a credential by id. Administrative use only.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
