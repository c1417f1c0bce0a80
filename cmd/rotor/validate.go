package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rotor-hq/rotor/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load and validate the configuration file, including environment
variable overrides, without starting the gateway.

Examples:
  # Validate the default config
  rotor validate

  # Validate a specific file
  rotor validate --config /etc/rotor/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return err
		}

		fmt.Println("Configuration valid")
		fmt.Printf("  listen address:   %s\n", cfg.Server.ListenAddress)
		fmt.Printf("  store backend:    %s\n", cfg.Store.Backend)
		fmt.Printf("  retry policy:     %d attempts, %s delay\n",
			cfg.Dispatch.MaxRetryAttempts, cfg.Dispatch.RetryDelay)
		fmt.Printf("  audit enabled:    %t\n", cfg.Audit.Enabled)
		fmt.Printf("  metrics enabled:  %t\n", cfg.Telemetry.Metrics.Enabled)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
