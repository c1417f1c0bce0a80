package logging

import (
	"context"
	"log/slog"
	"strings"
)

// sensitiveKeys marks attribute names whose values must never reach the
// log output in full. Matching is case-insensitive on substrings.
var sensitiveKeys = []string{
	"secret",
	"token",
	"api_key",
	"apikey",
	"password",
	"authorization",
	"credential_secret",
}

// RedactingHandler is an slog.Handler wrapper that masks the values of
// secret-bearing attributes before passing records on.
type RedactingHandler struct {
	inner slog.Handler
}

// NewRedactingHandler wraps the given handler.
func NewRedactingHandler(inner slog.Handler) *RedactingHandler {
	return &RedactingHandler{inner: inner}
}

// Enabled implements slog.Handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler, masking sensitive attribute values.
func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, clean)
}

// WithAttrs implements slog.Handler.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(redacted)}
}

// WithGroup implements slog.Handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		redacted := make([]slog.Attr, len(members))
		for i, m := range members {
			redacted[i] = redactAttr(m)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}

	if !isSensitiveKey(a.Key) {
		return a
	}
	return slog.String(a.Key, Mask(a.Value.String()))
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	// credential_id is an identifier, not a secret.
	if strings.HasSuffix(lower, "_id") || lower == "id" {
		return false
	}
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// Mask returns a display form of a secret: the first four characters
// followed by a fixed marker, or just the marker for short values.
func Mask(secret string) string {
	const keep = 4
	if len(secret) <= keep {
		return "****"
	}
	return secret[:keep] + "****"
}
