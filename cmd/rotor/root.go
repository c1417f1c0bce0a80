package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rotor",
	Short: "Rotor - credential-rotating LLM gateway",
	Long: `Rotor is a credential-rotating gateway for LLM chat requests.

It holds a pool of provider API keys and serves each request with the
eligible credential that has rested longest. Used credentials enter a
cooldown window; transient upstream failures are retried on a fixed
delay within a bounded attempt budget.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
