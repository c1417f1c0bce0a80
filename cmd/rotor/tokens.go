package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"rotor-hq/rotor/pkg/config"
	"rotor-hq/rotor/pkg/credential"
)

var tokensAddFlags struct {
	secret   string
	provider string
	cooldown time.Duration
}

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Manage the credential pool",
	Long: `Manage the pool of upstream provider credentials.

Credentials are stored with their provider type and cooldown; the
gateway rotates through them oldest-use-first. Secrets are never
printed in full.`,
}

var tokensAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a credential to the pool",
	Long: `Add a credential to the pool.

Examples:
  rotor tokens add --provider gemini --secret "AIza..."
  rotor tokens add --provider openrouter --secret "sk-or-..." --cooldown 1m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokensAddFlags.secret == "" {
			return fmt.Errorf("--secret is required")
		}
		switch tokensAddFlags.provider {
		case credential.ProviderGemini, credential.ProviderOpenRouter:
		default:
			return fmt.Errorf("unsupported provider type %q", tokensAddFlags.provider)
		}

		cfg, st, err := openStoreFromConfig()
		if err != nil {
			return err
		}
		defer st.Close()

		cooldown := tokensAddFlags.cooldown
		if cooldown == 0 {
			cooldown = cfg.Store.DefaultCooldown
		}
		cred := &credential.Credential{
			ID:           uuid.New().String(),
			Secret:       tokensAddFlags.secret,
			ProviderType: tokensAddFlags.provider,
			Cooldown:     cooldown,
		}
		if err := st.Insert(cmd.Context(), cred); err != nil {
			return fmt.Errorf("adding credential: %w", err)
		}

		fmt.Printf("Added credential %s (%s, secret %s, cooldown %s)\n",
			cred.ID, cred.ProviderType, cred.Redacted(), cred.Cooldown)
		return nil
	},
}

var tokensListCmd = &cobra.Command{
	Use:   "list",
	Short: "List credentials in the pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, err := openStoreFromConfig()
		if err != nil {
			return err
		}
		defer st.Close()

		creds, err := st.All(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing credentials: %w", err)
		}
		if len(creds) == 0 {
			fmt.Println("No credentials")
			return nil
		}

		now := time.Now()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPROVIDER\tSECRET\tCOOLDOWN\tLAST USED\tELIGIBLE")
		for _, c := range creds {
			lastUsed := "never"
			if !c.LastUsedAt.IsZero() {
				lastUsed = c.LastUsedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\n",
				c.ID, c.ProviderType, c.Redacted(), c.Cooldown, lastUsed, c.EligibleAt(now))
		}
		return w.Flush()
	},
}

var tokensRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a credential from the pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, err := openStoreFromConfig()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("removing credential: %w", err)
		}
		fmt.Printf("Removed credential %s\n", args[0])
		return nil
	},
}

// openStoreFromConfig loads the configuration and opens the credential
// store it names. The memory backend is rejected here: a credential
// added to a process-local store would vanish with the process.
func openStoreFromConfig() (*config.Config, credential.Store, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Store.Backend == "memory" {
		return nil, nil, fmt.Errorf("the memory store backend has no durable credential pool to manage")
	}
	st, err := openCredentialStore(cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("opening credential store: %w", err)
	}
	return cfg, st, nil
}

func init() {
	tokensAddCmd.Flags().StringVar(&tokensAddFlags.secret, "secret", "", "credential secret (required)")
	tokensAddCmd.Flags().StringVar(&tokensAddFlags.provider, "provider", credential.ProviderGemini, "provider type (gemini or openrouter)")
	tokensAddCmd.Flags().DurationVar(&tokensAddFlags.cooldown, "cooldown", 0, "cooldown between uses (default from config)")

	tokensCmd.AddCommand(tokensAddCmd)
	tokensCmd.AddCommand(tokensListCmd)
	tokensCmd.AddCommand(tokensRemoveCmd)
	rootCmd.AddCommand(tokensCmd)
}
