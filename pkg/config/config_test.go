package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rotor.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: ":9090"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.ListenAddress != ":9090" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Dispatch.MaxRetryAttempts != 10 {
		t.Errorf("MaxRetryAttempts = %d, want 10", cfg.Dispatch.MaxRetryAttempts)
	}
	if cfg.Dispatch.RetryDelay != 30*time.Second {
		t.Errorf("RetryDelay = %v, want 30s", cfg.Dispatch.RetryDelay)
	}
	if cfg.Providers.Gemini.Model != "gemini-1.5-flash" {
		t.Errorf("Gemini model = %q", cfg.Providers.Gemini.Model)
	}
	if cfg.Providers.OpenRouter.Model != "deepseek/deepseek-chat-v3-0324:free" {
		t.Errorf("OpenRouter model = %q", cfg.Providers.OpenRouter.Model)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("store backend = %q", cfg.Store.Backend)
	}
}

func TestLoadConfig_FullFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: ":8081"
  access_token: "tok-abc"
store:
  backend: memory
  default_cooldown: 45s
dispatch:
  max_retry_attempts: 3
  retry_delay: 5s
providers:
  gemini:
    model: gemini-2.0-flash
    timeout: 20s
audit:
  enabled: true
  backend: memory
  retention:
    max_age: 720h
    schedule: "0 3 * * *"
telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.AccessToken != "tok-abc" {
		t.Errorf("AccessToken = %q", cfg.Server.AccessToken)
	}
	if cfg.Store.DefaultCooldown != 45*time.Second {
		t.Errorf("DefaultCooldown = %v", cfg.Store.DefaultCooldown)
	}
	if cfg.Dispatch.MaxRetryAttempts != 3 || cfg.Dispatch.RetryDelay != 5*time.Second {
		t.Errorf("dispatch = %+v", cfg.Dispatch)
	}
	if cfg.Providers.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("Gemini model = %q", cfg.Providers.Gemini.Model)
	}
	if cfg.Audit.Retention.MaxAge != 720*time.Hour {
		t.Errorf("retention max_age = %v", cfg.Audit.Retention.MaxAge)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("logging level = %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = "postgres"
	cfg.Dispatch.MaxRetryAttempts = 0
	cfg.Telemetry.Logging.Level = "verbose"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("got %d errors, want 3: %v", len(verr.Errors), verr)
	}
}

func TestValidate_BadCronSchedule(t *testing.T) {
	cfg := Default()
	cfg.Audit.Retention.Schedule = "whenever"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for bad cron schedule")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
dispatch:
  max_retry_attempts: 3
  retry_delay: 5s
`)

	t.Setenv("ROTOR_DISPATCH_MAX_RETRY_ATTEMPTS", "7")
	t.Setenv("ROTOR_DISPATCH_RETRY_DELAY", "2s")
	t.Setenv("ROTOR_SERVER_ACCESS_TOKEN", "env-token")
	t.Setenv("ROTOR_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Dispatch.MaxRetryAttempts != 7 {
		t.Errorf("MaxRetryAttempts = %d, want 7", cfg.Dispatch.MaxRetryAttempts)
	}
	if cfg.Dispatch.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", cfg.Dispatch.RetryDelay)
	}
	if cfg.Server.AccessToken != "env-token" {
		t.Errorf("AccessToken = %q", cfg.Server.AccessToken)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("logging level = %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("ROTOR_TELEMETRY_LOGGING_LEVEL", "chatty")

	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Fatal("expected validation error after env override")
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
