package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tallyhq/tally/internal/buildinfo"
	"github.com/tallyhq/tally/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(newApp())
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Track personal expenses and report spending by category and month",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("data-dir", "", "data directory (default $HOME/.tally)")
	flags.String("config", "", "config file (default <data-dir>/tally.yaml)")
	flags.String("backend", "", "storage backend: file, sqlite, postgres or memory")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")

	cobra.CheckErr(bindFlags(a.v, flags, map[string]string{
		config.KeyDataDir:        "data-dir",
		config.KeyConfig:         "config",
		config.KeyStorageBackend: "backend",
		config.KeyLogLevel:       "log-level",
		config.KeyLogFormat:      "log-format",
	}))

	rootCmd.AddCommand(
		newInitCommand(a),
		newAddCommand(a),
		newListCommand(a),
		newEditCommand(a),
		newRemoveCommand(a),
		newReportCommand(a),
		newExportCommand(a),
		newImportCommand(a),
		newLogCommand(a),
		newCategoriesCommand(a),
	)

	return rootCmd
}

// bindFlags binds each viper key to the named flag. A missing flag is an
// error rather than a silently ignored override.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, byKey map[string]string) error {
	var errs []error
	for key, name := range byKey {
		f := flags.Lookup(name)
		if f == nil {
			errs = append(errs, fmt.Errorf("binding %s: no flag --%s", key, name))
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("binding %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
