package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"kokocares/keywords/pkg/config"
	"kokocares/keywords/pkg/rules"
	"kokocares/keywords/pkg/rules/cache"
	"kokocares/keywords/pkg/telemetry/health"
	"kokocares/keywords/pkg/telemetry/metrics"
	"kokocares/keywords/pkg/telemetry/tracing"
)

// RuleClient is the part of keywords.Client the server needs.
type RuleClient interface {
	Match(ctx context.Context, text, filterExpr, version string) (bool, error)
	Refresh(ctx context.Context, version string) (*rules.RuleSet, error)
	Status() []cache.EntryStatus
	Fresh() bool
}

// Options carries the optional collaborators of a Server.
type Options struct {
	// Metrics enables the metrics route and request metrics.
	Metrics *metrics.Collector

	// MetricsPath is where metrics are served (config.DefaultMetricsPath when empty).
	MetricsPath string

	// Tracer starts a server span per request.
	Tracer *tracing.Tracer

	// Health replaces the default checker, which only checks the rule cache.
	Health *health.Checker

	// Logger overrides slog.Default.
	Logger *slog.Logger

	// Build information for /version.
	Version   string
	Commit    string
	BuildTime string
}

// Server is the keywords HTTP server.
type Server struct {
	config       *config.ServerConfig
	client       RuleClient
	opts         Options
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	addr         net.Addr
}

// NewServer creates a server answering from client.
func NewServer(cfg *config.ServerConfig, client RuleClient, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = config.DefaultMetricsPath
	}
	if opts.Health == nil {
		opts.Health = health.New(0)
		opts.Health.RegisterCheck("rules", health.RulesCheck(client))
	}

	return &Server{
		config:       cfg,
		client:       client,
		opts:         opts,
		logger:       opts.Logger,
		shutdownChan: make(chan struct{}),
	}
}

// Start listens on the configured address and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln and blocks until shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		_ = ln.Close()
		return errors.New("server is already running")
	}
	s.isRunning = true
	s.addr = ln.Addr()
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting keywords server", "address", ln.Addr().String())

		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Addr returns the listening address once Serve has started.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Stop asks a running Start or Serve to shut down.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		httpServer := s.httpServer
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("keywords server stopped")
	})

	return shutdownErr
}
