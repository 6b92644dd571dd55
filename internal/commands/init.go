package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/config"
)

func newInitCommand(a *app) *cobra.Command {
	var cats []string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory, config file and storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfgFound && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.configPath)
			}
			cfg := config.Default()
			cfg.ApplyOverrides(a.v)
			if len(cats) > 0 {
				cfg.Categories = cats
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			return runInit(cmd, a)
		},
	}

	cmd.Flags().StringSliceVar(&cats, "categories", nil, "comma-separated category list (default: built-in list)")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing config file with a fresh one")

	return cmd
}

func runInit(cmd *cobra.Command, a *app) error {
	if err := os.MkdirAll(a.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Connection strings given on the command line or in the environment
	// stay out of the file.
	saved := *a.cfg
	if a.v.IsSet(config.KeyStorageDSN) {
		saved.Storage.DSN = ""
	}
	if err := config.Save(a.configPath, &saved); err != nil {
		return err
	}

	// Opening the ledger creates the storage and runs migrations.
	if err := a.withSession(cmd.Context(), func(*session) error { return nil }); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized tally in %s (storage: %s)\n", a.dataDir, a.cfg.Storage.Backend)
	return nil
}
