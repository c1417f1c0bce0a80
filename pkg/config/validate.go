package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError is a validation error for one configuration field.
type FieldError struct {
	// Field is the dotted path to the field (e.g. "dispatch.retry_delay").
	Field string

	// Message is a human-readable error message.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every validation failure found.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the whole configuration and collects every failure
// rather than stopping at the first.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.Server.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "must not be empty"})
	}
	if cfg.Server.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{"server.shutdown_timeout", "must not be negative"})
	}

	switch cfg.Store.Backend {
	case "sqlite":
		if cfg.Store.Path == "" {
			errs = append(errs, FieldError{"store.path", "required for sqlite backend"})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{"store.backend",
			fmt.Sprintf("unknown backend %q (want sqlite or memory)", cfg.Store.Backend)})
	}
	if cfg.Store.DefaultCooldown < 0 {
		errs = append(errs, FieldError{"store.default_cooldown", "must not be negative"})
	}

	if cfg.Dispatch.MaxRetryAttempts < 1 {
		errs = append(errs, FieldError{"dispatch.max_retry_attempts", "must be at least 1"})
	}
	if cfg.Dispatch.RetryDelay < 0 {
		errs = append(errs, FieldError{"dispatch.retry_delay", "must not be negative"})
	}

	for _, p := range []struct {
		name string
		cfg  *ProviderConfig
	}{
		{"providers.gemini", &cfg.Providers.Gemini},
		{"providers.openrouter", &cfg.Providers.OpenRouter},
	} {
		if p.cfg.Model == "" {
			errs = append(errs, FieldError{p.name + ".model", "must not be empty"})
		}
		if p.cfg.Timeout <= 0 {
			errs = append(errs, FieldError{p.name + ".timeout", "must be positive"})
		}
	}

	if cfg.Audit.Enabled {
		switch cfg.Audit.Backend {
		case "sqlite":
			if cfg.Audit.Path == "" {
				errs = append(errs, FieldError{"audit.path", "required for sqlite backend"})
			}
		case "memory":
		default:
			errs = append(errs, FieldError{"audit.backend",
				fmt.Sprintf("unknown backend %q (want sqlite or memory)", cfg.Audit.Backend)})
		}
		if cfg.Audit.Retention.Schedule != "" {
			if _, err := cron.ParseStandard(cfg.Audit.Retention.Schedule); err != nil {
				errs = append(errs, FieldError{"audit.retention.schedule",
					fmt.Sprintf("invalid cron expression: %v", err)})
			}
		}
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error", "":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level",
			fmt.Sprintf("unknown level %q", cfg.Telemetry.Logging.Level)})
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text", "":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format",
			fmt.Sprintf("unknown format %q", cfg.Telemetry.Logging.Format)})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
