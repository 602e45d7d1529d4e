package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/faro-app/faro/internal/logger"
)

var (
	configFile  string
	databaseURL string
	verbose     bool

	config *Config
)

// Version is stamped by the release build.
var Version = "dev"

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "faro",
		Short:   "Faro - productivity backend tooling",
		Long:    "Faro manages the database schema and change-feed triggers\nbehind the Faro productivity application.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			config, err = LoadConfig(configFile)
			if err != nil {
				return err
			}
			if databaseURL != "" {
				config.Database.URL = databaseURL
			}

			level := slog.LevelInfo
			if verbose || config.Log.Level == "debug" {
				level = slog.LevelDebug
			}
			slog.SetDefault(logger.New(os.Stderr, level))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: faro.yaml)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "url", "", "database connection URL")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")

	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
