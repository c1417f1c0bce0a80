package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"rotor-hq/rotor/pkg/credential"
)

// MemoryStore implements credential.Store using an in-memory map.
// All state is lost when the process exits. It is thread-safe and mainly
// useful for tests and short-lived deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]*credential.Credential
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		creds: make(map[string]*credential.Credential),
	}
}

// ListEligible returns eligible credentials matching the filter, ordered
// by LastUsedAt ascending with never-used entries first.
func (m *MemoryStore) ListEligible(ctx context.Context, filter []string, asOf time.Time) ([]*credential.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, &credential.StoreError{Op: "list_eligible", Cause: err}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var eligible []*credential.Credential
	for _, c := range m.creds {
		if !c.MatchesFilter(filter) {
			continue
		}
		if !c.EligibleAt(asOf) {
			continue
		}
		cp := *c
		eligible = append(eligible, &cp)
	}

	sortOldestFirst(eligible)
	return eligible, nil
}

// MarkUsed sets LastUsedAt for the credential with the given id.
func (m *MemoryStore) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return &credential.StoreError{Op: "mark_used", Cause: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.creds[id]
	if !ok {
		return &credential.NotFoundError{ID: id}
	}
	c.LastUsedAt = usedAt
	return nil
}

// Insert adds a new credential.
func (m *MemoryStore) Insert(ctx context.Context, c *credential.Credential) error {
	if err := ctx.Err(); err != nil {
		return &credential.StoreError{Op: "insert", Cause: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *c
	m.creds[c.ID] = &cp
	return nil
}

// All returns every credential ordered by id.
func (m *MemoryStore) All(ctx context.Context) ([]*credential.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, &credential.StoreError{Op: "all", Cause: err}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*credential.Credential, 0, len(m.creds))
	for _, c := range m.creds {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes a credential by id.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return &credential.StoreError{Op: "delete", Cause: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.creds[id]; !ok {
		return &credential.NotFoundError{ID: id}
	}
	delete(m.creds, id)
	return nil
}

// Close releases resources. It is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// sortOldestFirst orders credentials by LastUsedAt ascending with
// never-used (zero LastUsedAt) entries first. Ties break on id so the
// ordering is deterministic.
func sortOldestFirst(creds []*credential.Credential) {
	sort.SliceStable(creds, func(i, j int) bool {
		a, b := creds[i], creds[j]
		if a.LastUsedAt.IsZero() != b.LastUsedAt.IsZero() {
			return a.LastUsedAt.IsZero()
		}
		if !a.LastUsedAt.Equal(b.LastUsedAt) {
			return a.LastUsedAt.Before(b.LastUsedAt)
		}
		return a.ID < b.ID
	})
}
