package credential

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Selector atomically finds and reserves one eligible credential.
//
// Select performs a read-then-mark sequence: list the eligible
// credentials, pick the oldest-use entry, and immediately mark it used so
// its cooldown starts at selection time rather than after the provider
// call completes. Marking up front means two concurrent requests can
// never race selection and use of the same soon-to-expire credential;
// the cost is that a credential is spent even if the provider call later
// fails, which is the intended conservative trade-off (a failed call
// still very plausibly consumed provider-side quota).
//
// A single mutex serializes the whole sequence. No two concurrent Select
// calls can return the same credential id.
type Selector struct {
	store Store
	mu    sync.Mutex

	// now is the time source, replaceable in tests.
	now func() time.Time
}

// NewSelector creates a Selector over the given store.
func NewSelector(store Store) *Selector {
	return &Selector{
		store: store,
		now:   time.Now,
	}
}

// Select reserves one eligible credential matching the optional provider
// filter. It returns ErrNoneEligible when every matching credential is in
// cooldown, or a *StoreError when the store fails.
//
// The returned credential's LastUsedAt reflects the reservation.
func (s *Selector) Select(ctx context.Context, filter []string) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	asOf := s.now()

	eligible, err := s.store.ListEligible(ctx, filter, asOf)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		slog.Debug("no eligible credentials",
			"filter", filter,
		)
		return nil, ErrNoneEligible
	}

	// Oldest-use first; never-used entries sort before everything else.
	chosen := eligible[0]

	if err := s.store.MarkUsed(ctx, chosen.ID, asOf); err != nil {
		return nil, err
	}
	chosen.LastUsedAt = asOf

	slog.Debug("credential reserved",
		"credential_id", chosen.ID,
		"provider", chosen.ProviderType,
		"cooldown", chosen.Cooldown,
	)

	return chosen, nil
}
