// Package credential defines the credential data model, the durable Store
// contract, and the Selector that atomically reserves eligible credentials.
package credential

import "time"

// Provider type tags. Adding a provider means adding a tag here and a
// client variant under pkg/providers; the selector and orchestrator are
// unaffected.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// Credential is one upstream API key with its rotation state.
// The secret authenticates to the upstream provider and must never be
// logged or returned to callers.
type Credential struct {
	// ID is the unique stable identifier for this credential.
	ID string

	// Secret is the opaque value used to authenticate upstream.
	Secret string

	// ProviderType tags which provider this credential belongs to
	// (e.g. "gemini", "openrouter"). Immutable after creation.
	ProviderType string

	// LastUsedAt is the timestamp of the most recent use.
	// The zero value means "never used / immediately eligible".
	LastUsedAt time.Time

	// Cooldown is the minimum interval that must elapse after
	// LastUsedAt before the credential is eligible again.
	Cooldown time.Duration
}

// EligibleAt reports whether the credential may be used at time t.
// Eligibility is always computed against the supplied time, never cached:
// a credential is eligible iff it has never been used or its cooldown has
// fully elapsed.
func (c *Credential) EligibleAt(t time.Time) bool {
	if c.LastUsedAt.IsZero() {
		return true
	}
	return !t.Before(c.LastUsedAt.Add(c.Cooldown))
}

// MatchesFilter reports whether the credential's provider type is in the
// filter list. An empty filter matches every credential.
func (c *Credential) MatchesFilter(filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, t := range filter {
		if c.ProviderType == t {
			return true
		}
	}
	return false
}

// Redacted returns a display form of the secret safe for logs and CLI
// output: the first four characters followed by the total length.
func (c *Credential) Redacted() string {
	const keep = 4
	if len(c.Secret) <= keep {
		return "****"
	}
	return c.Secret[:keep] + "****"
}
