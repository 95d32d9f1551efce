package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/spendwise/spendcat/internal/buildinfo"
	"github.com/spendwise/spendcat/internal/config"
)

// defaultConfigPath is used when neither --config nor SPENDCAT_CONFIG is
// set.
const defaultConfigPath = "spendcat.yaml"

// NewRootCommand creates the root CLI command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "spendcat",
		Short:   "Smart expense categorization pipeline",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is fine; it is only a convenience.
			_ = godotenv.Load()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "path to spendcat.yaml (default ./spendcat.yaml)")

	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newTrainCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newPredictCommand())

	return rootCmd
}

// loadConfig resolves the config path from the --config flag, then the
// SPENDCAT_CONFIG environment variable, then the default location. A
// missing file at the default location falls back to the built-in
// defaults; an explicitly requested file must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if !explicit {
		if env := os.Getenv("SPENDCAT_CONFIG"); env != "" {
			path = env
			explicit = true
		} else {
			path = defaultConfigPath
		}
	}

	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		cfg = config.Default()
	} else if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
