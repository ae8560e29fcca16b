// Package cmd implements the CLI commands for mytv.
package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Jash-k/MyTVStremioAddon/internal/config"
	"github.com/Jash-k/MyTVStremioAddon/internal/observability"
	"github.com/Jash-k/MyTVStremioAddon/internal/version"
)

var (
	// cfgFile holds the config file path from CLI flag.
	cfgFile string

	// appConfig is the configuration loaded before any subcommand runs.
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "mytv",
	Short:   "Tamil live TV addon server",
	Version: version.Short(),
	Long: `mytv serves a Tamil live TV channel catalog to media-center addon clients.

It ingests an extended M3U playlist, keeps the channels that match the Tamil
classification rules, and answers manifest, catalog and stream requests.
Optionally it proxies HLS manifests, pinning one variant and clamping segment
durations so players see a stable stream.`,
	SilenceUsage: true,
	// PersistentPreRunE is set in init() to avoid initialization cycle
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	// Set PersistentPreRunE here to avoid initialization cycle
	// (initLogging references rootCmd.PersistentFlags)
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		return initLogging()
	}

	// These flags are not bound to the config loader. They override file and
	// environment values only when explicitly set.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml, /etc/mytv/config.yaml or $HOME/.mytv/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (text, json)")
}

func loadConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	appConfig = cfg
	return nil
}

// initLogging configures the default slog logger.
//
// Priority order (highest to lowest):
//  1. CLI flags (--log-level, --log-format) - only if explicitly provided
//  2. Environment variables (MYTV_LOGGING_LEVEL, MYTV_LOGGING_FORMAT)
//  3. Config file values
//  4. Built-in defaults (info, json)
func initLogging() error {
	flags := rootCmd.PersistentFlags()
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		appConfig.Logging.Level = strings.ToLower(level)
	}
	if flags.Changed("log-format") {
		format, _ := flags.GetString("log-format")
		appConfig.Logging.Format = strings.ToLower(format)
	}

	// Handle "warning" as an alias for "warn"
	if appConfig.Logging.Level == "warning" {
		appConfig.Logging.Level = "warn"
	}

	logger := observability.NewLogger(appConfig.Logging)
	slog.SetDefault(logger.With(slog.String("app", version.ApplicationName)))
	return nil
}

// intFlag returns the flag value when it was set explicitly.
func intFlag(flags *pflag.FlagSet, name string) (int, bool) {
	if !flags.Changed(name) {
		return 0, false
	}
	v, err := flags.GetInt(name)
	return v, err == nil
}

// stringFlag returns the flag value when it was set explicitly.
func stringFlag(flags *pflag.FlagSet, name string) (string, bool) {
	if !flags.Changed(name) {
		return "", false
	}
	v, err := flags.GetString(name)
	return v, err == nil
}
