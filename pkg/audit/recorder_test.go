package audit

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestRecorder_WritesAsync(t *testing.T) {
	st := NewMemoryStorage()
	rec := NewRecorder(st, RecorderConfig{Enabled: true})

	rec.LogAttempt(context.Background(), "cred-1", "gemini", "sys", "hello", "the reply")
	rec.LogAttempt(context.Background(), "cred-2", "openrouter", "", "hi", "error: rate limited")

	// Close drains the channel before returning.
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	n, err := st.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("Count = %d, want 2", n)
	}

	entries, err := st.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	for _, e := range entries {
		if e.ID == "" {
			t.Error("entry has no id")
		}
		if e.CredentialID == "" {
			t.Error("entry has no credential id")
		}
	}
}

func TestRecorder_Disabled(t *testing.T) {
	st := NewMemoryStorage()
	rec := NewRecorder(st, RecorderConfig{Enabled: false})
	defer rec.Close()

	rec.LogAttempt(context.Background(), "cred-1", "gemini", "", "p", "ok")
	rec.Close()

	n, _ := st.Count(context.Background())
	if n != 0 {
		t.Errorf("Count = %d, want 0 when disabled", n)
	}
}

func TestRecorder_TruncatesLongFields(t *testing.T) {
	st := NewMemoryStorage()
	rec := NewRecorder(st, RecorderConfig{Enabled: true, MaxFieldLength: 10})

	long := strings.Repeat("x", 100)
	rec.LogAttempt(context.Background(), "cred-1", "gemini", long, long, long)
	rec.Close()

	entries, err := st.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d", len(entries))
	}
	e := entries[0]
	if len(e.Prompt) != 10 || len(e.SystemPrompt) != 10 || len(e.Outcome) != 10 {
		t.Errorf("fields not truncated: %d %d %d", len(e.Prompt), len(e.SystemPrompt), len(e.Outcome))
	}
}

func TestTruncate_KeepsValidUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"ascii under limit", "short", 10, "short"},
		{"ascii at limit", "exactlyten", 10, "exactlyten"},
		{"ascii cut", "0123456789abc", 10, "0123456789"},
		{"multibyte boundary", "héllo", 2, "h"},
		{"multibyte kept whole", "héllo", 3, "hé"},
		{"all multibyte", "日本語", 4, "日"},
		{"negative disables", strings.Repeat("x", 50), -1, strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8: %q", tt.in, tt.max, got)
			}
		})
	}
}

func TestRecorder_CloseIdempotent(t *testing.T) {
	rec := NewRecorder(NewMemoryStorage(), DefaultRecorderConfig())
	if err := rec.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestPruner_Prune(t *testing.T) {
	st := NewMemoryStorage()
	ctx := context.Background()

	old := &Entry{ID: "old", CredentialID: "c", ProviderType: "gemini",
		CreatedAt: time.Now().Add(-48 * time.Hour)}
	fresh := &Entry{ID: "fresh", CredentialID: "c", ProviderType: "gemini",
		CreatedAt: time.Now()}
	for _, e := range []*Entry{old, fresh} {
		if err := st.Store(ctx, e); err != nil {
			t.Fatalf("store: %v", err)
		}
	}

	p := NewPruner(st, RetentionConfig{MaxAge: 24 * time.Hour})
	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	n, _ := st.Count(ctx)
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestPruner_DisabledWithoutMaxAge(t *testing.T) {
	st := NewMemoryStorage()
	ctx := context.Background()
	if err := st.Store(ctx, &Entry{ID: "e", CreatedAt: time.Now().Add(-time.Hour)}); err != nil {
		t.Fatalf("store: %v", err)
	}

	p := NewPruner(st, RetentionConfig{})
	deleted, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}

func TestPruner_RejectsBadSchedule(t *testing.T) {
	p := NewPruner(NewMemoryStorage(), RetentionConfig{
		MaxAge:   time.Hour,
		Schedule: "not a cron expression",
	})
	if err := p.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}
