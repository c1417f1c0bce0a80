package config

import "time"

// Config is the root configuration for the rotor gateway.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Providers ProvidersConfig `yaml:"providers"`
	Audit     AuditConfig     `yaml:"audit"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig configures the HTTP gateway.
type ServerConfig struct {
	// ListenAddress is the host:port the gateway binds to.
	ListenAddress string `yaml:"listen_address"`

	// AccessToken, when non-empty, is required as a Bearer token on
	// every API request. It is never logged.
	AccessToken string `yaml:"access_token"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StoreConfig configures the credential store.
type StoreConfig struct {
	// Backend selects the store implementation: "sqlite" or "memory".
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path.
	Path string `yaml:"path"`

	// BusyTimeout is how long SQLite waits for locks.
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// DefaultCooldown applies to credentials added without an explicit
	// cooldown.
	DefaultCooldown time.Duration `yaml:"default_cooldown"`
}

// DispatchConfig configures the retry policy.
type DispatchConfig struct {
	// MaxRetryAttempts is the attempt budget per request.
	MaxRetryAttempts int `yaml:"max_retry_attempts"`

	// RetryDelay is the fixed wait between attempts.
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// ProvidersConfig configures the upstream provider clients.
type ProvidersConfig struct {
	Gemini     ProviderConfig `yaml:"gemini"`
	OpenRouter ProviderConfig `yaml:"openrouter"`
}

// ProviderConfig configures one provider client.
type ProviderConfig struct {
	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model overrides the provider's default model.
	Model string `yaml:"model"`

	// Timeout bounds each upstream call.
	Timeout time.Duration `yaml:"timeout"`
}

// AuditConfig configures the audit trail.
type AuditConfig struct {
	// Enabled enables audit recording.
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage: "sqlite" or "memory".
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path.
	Path string `yaml:"path"`

	// Buffer is the async write channel size.
	Buffer int `yaml:"buffer"`

	// MaxFieldLength truncates prompt and outcome fields before storage.
	MaxFieldLength int `yaml:"max_field_length"`

	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls audit entry retention.
type RetentionConfig struct {
	// MaxAge is the maximum entry age. Zero keeps entries forever.
	MaxAge time.Duration `yaml:"max_age"`

	// Schedule is a cron expression for pruning runs, e.g. "0 3 * * *".
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is the output format: json or text.
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled enables metric recording.
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace"`

	// Path is the scrape endpoint path.
	Path string `yaml:"path"`
}
