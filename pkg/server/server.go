package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"skyfare/meridian/pkg/config"
	"skyfare/meridian/pkg/telemetry/health"
	"skyfare/meridian/pkg/telemetry/logging"
)

// Server is the HTTP server exposing rule evaluation.
type Server struct {
	cfg          *config.ServerConfig
	metricsCfg   *config.MetricsConfig
	evaluator    Evaluator
	logger       *logging.Logger
	registry     *prometheus.Registry
	health       *health.Checker
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server around the given evaluator. The registry
// may be nil when metrics are disabled.
func NewServer(cfg *config.ServerConfig, metricsCfg *config.MetricsConfig, evaluator Evaluator, logger *logging.Logger, registry *prometheus.Registry) *Server {
	return &Server{
		cfg:        cfg,
		metricsCfg: metricsCfg,
		evaluator:  evaluator,
		logger:     logger,
		registry:   registry,
	}
}

// WithHealth attaches a health checker; the server then serves probe
// endpoints backed by its component checks.
func (s *Server) WithHealth(checker *health.Checker) *Server {
	s.health = checker
	return s
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.cfg.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", s.cfg.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
	}
}

// Shutdown gracefully shuts down the server, bounded by the configured
// shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.cfg.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler with the full middleware
// chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/evaluate", &evaluateHandler{evaluator: s.evaluator, logger: s.logger})
	if s.health != nil {
		mux.HandleFunc("/healthz", s.health.LivenessHandler())
		mux.HandleFunc("/readyz", s.health.ReadinessHandler())
	} else {
		mux.Handle("/healthz", healthHandler())
	}
	if s.metricsCfg != nil && s.metricsCfg.Enabled && s.registry != nil {
		mux.Handle(s.metricsCfg.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	var handler http.Handler = mux
	handler = loggingMiddleware(s.logger, handler)
	handler = requestIDMiddleware(handler)
	// Recovery outermost so nothing escapes.
	handler = recoveryMiddleware(s.logger, handler)

	return handler
}
