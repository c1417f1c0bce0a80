package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"rotor-hq/rotor/pkg/config"
	"rotor-hq/rotor/pkg/gateway/handlers"
	"rotor-hq/rotor/pkg/gateway/middleware"
)

// Server is the gateway HTTP server. It owns the route table, the
// middleware chain and the listener lifecycle.
type Server struct {
	config     config.ServerConfig
	dispatcher handlers.Dispatcher

	// metricsHandler serves /metrics when non-nil.
	metricsHandler http.Handler
	metricsPath    string

	// accessToken is read per-request so config reloads take effect
	// without a restart.
	accessToken atomic.Value // string

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMetrics mounts the given handler at path (e.g. "/metrics").
func WithMetrics(h http.Handler, path string) ServerOption {
	return func(s *Server) {
		s.metricsHandler = h
		s.metricsPath = path
	}
}

// NewServer creates a gateway server around the dispatcher.
func NewServer(cfg config.ServerConfig, dispatcher handlers.Dispatcher, opts ...ServerOption) *Server {
	s := &Server{
		config:     cfg,
		dispatcher: dispatcher,
	}
	s.accessToken.Store(cfg.AccessToken)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAccessToken replaces the access token at runtime.
func (s *Server) SetAccessToken(token string) {
	s.accessToken.Store(token)
}

// AccessToken returns the current access token. Implements the auth
// middleware's TokenSource.
func (s *Server) AccessToken() string {
	return s.accessToken.Load().(string)
}

// Start starts the HTTP server and blocks until the context is cancelled,
// a termination signal arrives or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server, waiting for in-flight requests
// up to the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

// Handler builds the full route table with the middleware chain applied.
// Health and metrics bypass the access-token check; the API does not.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.Handle("/api/chat", handlers.NewChatHandler(s.dispatcher))

	var apiHandler http.Handler = api
	apiHandler = middleware.Auth(s)(apiHandler)

	root := http.NewServeMux()
	root.Handle("/api/", apiHandler)
	root.Handle("/health", handlers.NewHealthHandler())
	if s.metricsHandler != nil {
		path := s.metricsPath
		if path == "" {
			path = "/metrics"
		}
		root.Handle(path, s.metricsHandler)
	}

	var handler http.Handler = root
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)

	return handler
}

// IsRunning reports whether the server is accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
