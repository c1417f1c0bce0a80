// Package logging configures the process-wide slog logger: level,
// output format, and redaction of secret-bearing attributes.
package logging
