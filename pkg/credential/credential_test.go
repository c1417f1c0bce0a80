package credential

import (
	"testing"
	"time"
)

func TestCredential_EligibleAt(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		lastUsed time.Time
		cooldown time.Duration
		at       time.Time
		want     bool
	}{
		{"never used", time.Time{}, 30 * time.Second, t0, true},
		{"inside cooldown", t0, 30 * time.Second, t0.Add(1 * time.Second), false},
		{"just before expiry", t0, 30 * time.Second, t0.Add(29 * time.Second), false},
		{"exactly at expiry", t0, 30 * time.Second, t0.Add(30 * time.Second), true},
		{"after expiry", t0, 30 * time.Second, t0.Add(31 * time.Second), true},
		{"zero cooldown", t0, 0, t0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Credential{LastUsedAt: tt.lastUsed, Cooldown: tt.cooldown}
			if got := c.EligibleAt(tt.at); got != tt.want {
				t.Errorf("EligibleAt(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestCredential_MatchesFilter(t *testing.T) {
	c := &Credential{ProviderType: ProviderGemini}

	if !c.MatchesFilter(nil) {
		t.Error("empty filter should match every credential")
	}
	if !c.MatchesFilter([]string{ProviderOpenRouter, ProviderGemini}) {
		t.Error("filter containing the provider type should match")
	}
	if c.MatchesFilter([]string{ProviderOpenRouter}) {
		t.Error("filter without the provider type should not match")
	}
}

func TestCredential_Redacted(t *testing.T) {
	c := &Credential{Secret: "sk-abcdef123456"}
	got := c.Redacted()
	if got != "sk-a****" {
		t.Errorf("Redacted() = %q, want %q", got, "sk-a****")
	}

	short := &Credential{Secret: "abc"}
	if short.Redacted() != "****" {
		t.Errorf("short secret should redact fully, got %q", short.Redacted())
	}
}
