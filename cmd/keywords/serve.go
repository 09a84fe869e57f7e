package main

import (
	"context"
	"fmt"
	"time"

	"kokocares/keywords/pkg/cli"
	"kokocares/keywords/pkg/keywords"
	"kokocares/keywords/pkg/server"
	"kokocares/keywords/pkg/telemetry/metrics"
	"kokocares/keywords/pkg/telemetry/tracing"

	"github.com/spf13/cobra"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	warm          bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /match over HTTP",
	Long: `Start the keywords HTTP server.

The server answers POST /match with {"matched": bool} and exposes /health,
/ready, /version, /metrics and the /v1/rules admin routes.

Examples:
  # Start with the environment only
  KOKO_KEYWORDS_AUTH=... keywords serve

  # Start with a config file and a different address
  keywords serve --config /etc/keywords/config.yaml --listen 0.0.0.0:8080

  # Validate config without starting the server
  keywords serve --config config.yaml --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
	serveCmd.Flags().BoolVar(&serveFlags.warm, "warm", true, "fetch the latest rules before accepting traffic")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	if serveFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		fmt.Fprintln(cmd.OutOrStdout(), cfg.String())
		return nil
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("serve", fmt.Errorf("initialize tracing: %w", err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	client, err := keywords.New(cfg,
		keywords.WithLogger(logger),
		keywords.WithMetrics(collector),
		keywords.WithTracer(tracer.Tracer()),
		keywords.WithUserAgent("keywords-server/"+Version),
	)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	ctx, stop := cli.SignalContext(commandContext(cmd))
	defer stop()

	if serveFlags.warm {
		if _, err := client.Match(ctx, "", "", ""); err != nil {
			code := keywords.CodeOf(err)
			logger.Warn("initial rule fetch failed", "code", int(code), "error", err)
		}
	}

	srv := server.NewServer(&cfg.Server, client, server.Options{
		Metrics:     collector,
		MetricsPath: cfg.Telemetry.Metrics.Path,
		Tracer:      tracer,
		Logger:      logger,
		Version:     Version,
		Commit:      GitCommit,
		BuildTime:   BuildDate,
	})

	logger.Info("keywords configuration", "config", cfg.String())
	return srv.Start(ctx)
}
