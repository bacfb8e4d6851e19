// Package cli provides the command-line interface for media-aggregator.
package cli

import (
	"fmt"
	"log/slog"

	"media-aggregator/internal/platform/config"
	"media-aggregator/internal/platform/logger"

	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

const defaultEnvFile = ".env"

var (
	envFile   string
	mediaFile string

	settings config.Settings
	log      *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "media-aggregator",
	Short: "Aggregate the video feeds of French news media",
	Long: "media-aggregator reads a registry of media outlets, fetches their video feeds, " +
		"and serves a website ranking the latest videos overall and by political orientation.",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	RunE:              serveAction,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "media-aggregator %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&mediaFile, "media", "", "media registry file (.json, .yaml or .toml); overrides MEDIA_FILE")
	rootCmd.AddCommand(versionCmd, serveCmd, fetchCmd, checkCmd)
}

// loadSettings reads the env file and environment, then applies flag
// overrides. Only an explicitly named env file must exist.
func loadSettings(_ *cobra.Command, _ []string) error {
	if err := config.Load(envFile); err != nil && envFile != defaultEnvFile {
		return fmt.Errorf("load env file %s: %w", envFile, err)
	}
	settings = config.FromEnv()
	if mediaFile != "" {
		settings.MediaFile = mediaFile
	}
	log = logger.New(settings.LogLevel, settings.LogFormat)
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
