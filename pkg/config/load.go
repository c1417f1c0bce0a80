package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// then applies ROTOR_SECTION_FIELD environment overrides, re-validating
// the result. Environment variables always win over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Server
	if val := os.Getenv("ROTOR_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("ROTOR_SERVER_ACCESS_TOKEN"); val != "" {
		cfg.Server.AccessToken = val
	}
	if val := os.Getenv("ROTOR_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Store
	if val := os.Getenv("ROTOR_STORE_BACKEND"); val != "" {
		cfg.Store.Backend = val
	}
	if val := os.Getenv("ROTOR_STORE_PATH"); val != "" {
		cfg.Store.Path = val
	}
	if val := os.Getenv("ROTOR_STORE_DEFAULT_COOLDOWN"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Store.DefaultCooldown = d
		}
	}

	// Dispatch
	if val := os.Getenv("ROTOR_DISPATCH_MAX_RETRY_ATTEMPTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Dispatch.MaxRetryAttempts = n
		}
	}
	if val := os.Getenv("ROTOR_DISPATCH_RETRY_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Dispatch.RetryDelay = d
		}
	}

	// Providers
	if val := os.Getenv("ROTOR_PROVIDERS_GEMINI_BASE_URL"); val != "" {
		cfg.Providers.Gemini.BaseURL = val
	}
	if val := os.Getenv("ROTOR_PROVIDERS_GEMINI_MODEL"); val != "" {
		cfg.Providers.Gemini.Model = val
	}
	if val := os.Getenv("ROTOR_PROVIDERS_OPENROUTER_BASE_URL"); val != "" {
		cfg.Providers.OpenRouter.BaseURL = val
	}
	if val := os.Getenv("ROTOR_PROVIDERS_OPENROUTER_MODEL"); val != "" {
		cfg.Providers.OpenRouter.Model = val
	}

	// Audit
	if val := os.Getenv("ROTOR_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("ROTOR_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("ROTOR_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
	}

	// Telemetry
	if val := os.Getenv("ROTOR_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("ROTOR_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("ROTOR_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
