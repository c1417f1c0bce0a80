package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"rotor-hq/rotor/pkg/audit"
	"rotor-hq/rotor/pkg/config"
	"rotor-hq/rotor/pkg/credential"
	"rotor-hq/rotor/pkg/credential/store"
	"rotor-hq/rotor/pkg/dispatch"
	"rotor-hq/rotor/pkg/gateway"
	"rotor-hq/rotor/pkg/providers"
	"rotor-hq/rotor/pkg/providers/gemini"
	"rotor-hq/rotor/pkg/providers/openrouter"
	"rotor-hq/rotor/pkg/telemetry/logging"
	"rotor-hq/rotor/pkg/telemetry/metrics"
)

var runFlags struct {
	listen   string
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway",
	Long: `Start the credential-rotating gateway.

Loads the configuration file, opens the credential and audit stores,
registers the provider clients and serves the HTTP API until interrupted.

Examples:
  # Start with the default config
  rotor run

  # Start with a custom config and listen address
  rotor run --config /etc/rotor/config.yaml --listen :9090

  # Check the wiring without serving
  rotor run --dry-run`,
	RunE: runGateway,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.listen, "listen", "", "listen address (overrides config)")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "log level (overrides config)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate configuration and wiring, then exit")
	rootCmd.AddCommand(runCmd)
}

func runGateway(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if runFlags.listen != "" {
		cfg.Server.ListenAddress = runFlags.listen
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	log := logger.Slog().With("component", "main")

	credStore, err := openCredentialStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}
	defer credStore.Close()

	selector := credential.NewSelector(credStore)

	registry := providers.NewRegistry()
	registry.Register(gemini.NewClient(gemini.Config{
		BaseURL: cfg.Providers.Gemini.BaseURL,
		Model:   cfg.Providers.Gemini.Model,
		Timeout: cfg.Providers.Gemini.Timeout,
	}))
	registry.Register(openrouter.NewClient(openrouter.Config{
		BaseURL: cfg.Providers.OpenRouter.BaseURL,
		Model:   cfg.Providers.OpenRouter.Model,
		Timeout: cfg.Providers.OpenRouter.Timeout,
	}))

	collector := metrics.NewCollector(metrics.Config{
		Enabled:   cfg.Telemetry.Metrics.Enabled,
		Namespace: cfg.Telemetry.Metrics.Namespace,
	}, nil)

	orchestratorOpts := []dispatch.Option{dispatch.WithObserver(collector)}

	var recorder *audit.Recorder
	if cfg.Audit.Enabled {
		auditStorage, err := openAuditStorage(cfg.Audit)
		if err != nil {
			return fmt.Errorf("opening audit storage: %w", err)
		}
		defer auditStorage.Close()

		// Closed before the storage: Close drains buffered entries.
		recorder = audit.NewRecorder(auditStorage, audit.RecorderConfig{
			Enabled:        true,
			Buffer:         cfg.Audit.Buffer,
			MaxFieldLength: cfg.Audit.MaxFieldLength,
		})
		defer recorder.Close()

		pruner := audit.NewPruner(auditStorage, audit.RetentionConfig{
			MaxAge:   cfg.Audit.Retention.MaxAge,
			Schedule: cfg.Audit.Retention.Schedule,
		})
		if err := pruner.Start(ctx); err != nil {
			return fmt.Errorf("starting audit pruner: %w", err)
		}
		defer pruner.Stop()

		orchestratorOpts = append(orchestratorOpts, dispatch.WithAttemptLogger(recorder))
	}

	orchestrator := dispatch.NewOrchestrator(selector, registry, dispatch.Policy{
		MaxAttempts: cfg.Dispatch.MaxRetryAttempts,
		RetryDelay:  cfg.Dispatch.RetryDelay,
	}, orchestratorOpts...)

	var serverOpts []gateway.ServerOption
	if cfg.Telemetry.Metrics.Enabled {
		serverOpts = append(serverOpts, gateway.WithMetrics(collector.Handler(), cfg.Telemetry.Metrics.Path))
	}
	srv := gateway.NewServer(cfg.Server, orchestrator, serverOpts...)

	if runFlags.dryRun {
		log.Info("dry run complete, configuration and wiring valid",
			"listen_address", cfg.Server.ListenAddress,
			"store_backend", cfg.Store.Backend,
			"providers", registry.Types())
		return nil
	}

	watcher, err := config.NewWatcher(cfgFile, 0)
	if err != nil {
		log.Warn("config watcher unavailable, hot reload disabled", "error", err)
	} else {
		defer watcher.Stop()
		go func() {
			err := watcher.Watch(ctx, func(next *config.Config) {
				applyReload(log, next, logger, srv, orchestrator)
			})
			if err != nil {
				log.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	log.Info("starting gateway",
		"version", Version,
		"listen_address", cfg.Server.ListenAddress,
		"store_backend", cfg.Store.Backend,
		"audit_enabled", cfg.Audit.Enabled,
		"metrics_enabled", cfg.Telemetry.Metrics.Enabled)

	return srv.Start(ctx)
}

// applyReload pushes the hot-reloadable subset of a changed config into
// the running components: log level, API access token and retry policy.
// Everything else (listen address, store backend, provider endpoints)
// requires a restart.
func applyReload(log *slog.Logger, next *config.Config, logger *logging.Logger, srv *gateway.Server, orc *dispatch.Orchestrator) {
	if err := logger.SetLevel(next.Telemetry.Logging.Level); err != nil {
		log.Warn("reload: invalid log level", "error", err)
	}
	srv.SetAccessToken(next.Server.AccessToken)
	orc.SetPolicy(dispatch.Policy{
		MaxAttempts: next.Dispatch.MaxRetryAttempts,
		RetryDelay:  next.Dispatch.RetryDelay,
	})
	log.Info("configuration reloaded",
		"log_level", next.Telemetry.Logging.Level,
		"max_retry_attempts", next.Dispatch.MaxRetryAttempts,
		"retry_delay", next.Dispatch.RetryDelay)
}

func openCredentialStore(cfg config.StoreConfig) (credential.Store, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return store.NewSQLiteStoreWithConfig(store.SQLiteConfig{
			Path:        cfg.Path,
			BusyTimeout: cfg.BusyTimeout,
		})
	}
}

func openAuditStorage(cfg config.AuditConfig) (audit.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return audit.NewMemoryStorage(), nil
	default:
		return audit.NewSQLiteStorage(cfg.Path)
	}
}
