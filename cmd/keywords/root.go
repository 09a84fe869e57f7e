package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"kokocares/keywords/pkg/cli"
	"kokocares/keywords/pkg/config"
	"kokocares/keywords/pkg/telemetry/logging"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Koko keywords - sensitive-keyword matching",
	Long: `Keywords matches user text against the Koko sensitive-keyword rule set.

Rules are fetched from the rule service and cached until the service's max-age
expires. Configure the service with one of:
  KOKO_KEYWORDS_URL   full rule service URL
  KOKO_KEYWORDS_AUTH  credentials for https://api.kokocares.org/keywords

or with a YAML file passed through --config.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.ExitStatus(err))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (environment only when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig reads --config with environment overrides, or the environment alone.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.FromEnv()
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}

// setupLogging installs the configured logger as the slog default.
func setupLogging(cfg *config.Config) (*slog.Logger, error) {
	logCfg := cfg.Telemetry.Logging
	if verbose {
		logCfg.Level = "debug"
	}

	logger, err := logging.New(logging.FromConfig(logCfg, os.Stderr))
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)
	return logger, nil
}

// commandContext returns the command's context, or Background outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
