package config

import "time"

// Default values applied to any field left unset.
const (
	DefaultListenAddress   = ":8080"
	DefaultStoreBackend    = "sqlite"
	DefaultStorePath       = "data/rotor.db"
	DefaultAuditPath       = "data/audit.db"
	DefaultDefaultCooldown = 30 * time.Second

	DefaultMaxRetryAttempts = 10
	DefaultRetryDelay       = 30 * time.Second

	DefaultGeminiModel     = "gemini-1.5-flash"
	DefaultOpenRouterModel = "deepseek/deepseek-chat-v3-0324:free"
	DefaultProviderTimeout = 60 * time.Second
)

// ApplyDefaults fills unset fields in place. It never overwrites a value
// the user provided.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// Must exceed the provider timeout plus retry delays, or the
		// gateway cuts off slow dispatches.
		cfg.Server.WriteTimeout = 10 * time.Minute
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultStoreBackend
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if cfg.Store.BusyTimeout == 0 {
		cfg.Store.BusyTimeout = 5 * time.Second
	}
	if cfg.Store.DefaultCooldown == 0 {
		cfg.Store.DefaultCooldown = DefaultDefaultCooldown
	}

	if cfg.Dispatch.MaxRetryAttempts == 0 {
		cfg.Dispatch.MaxRetryAttempts = DefaultMaxRetryAttempts
	}
	if cfg.Dispatch.RetryDelay == 0 {
		cfg.Dispatch.RetryDelay = DefaultRetryDelay
	}

	if cfg.Providers.Gemini.Model == "" {
		cfg.Providers.Gemini.Model = DefaultGeminiModel
	}
	if cfg.Providers.Gemini.Timeout == 0 {
		cfg.Providers.Gemini.Timeout = DefaultProviderTimeout
	}
	if cfg.Providers.OpenRouter.Model == "" {
		cfg.Providers.OpenRouter.Model = DefaultOpenRouterModel
	}
	if cfg.Providers.OpenRouter.Timeout == 0 {
		cfg.Providers.OpenRouter.Timeout = DefaultProviderTimeout
	}

	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = "sqlite"
	}
	if cfg.Audit.Path == "" {
		cfg.Audit.Path = DefaultAuditPath
	}
	if cfg.Audit.Buffer == 0 {
		cfg.Audit.Buffer = 1000
	}
	if cfg.Audit.MaxFieldLength == 0 {
		cfg.Audit.MaxFieldLength = 4096
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = "rotor"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
}

// Default returns a fully defaulted configuration.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Audit.Enabled = true
	cfg.Telemetry.Metrics.Enabled = true
	return cfg
}
