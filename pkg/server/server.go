package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"parallax-hq/parallax/pkg/api/handlers"
	"parallax-hq/parallax/pkg/api/middleware"
	"parallax-hq/parallax/pkg/config"
	"parallax-hq/parallax/pkg/telemetry/metrics"
)

// streamPathPrefix is exempt from the request timeout: an aggregated
// stream legitimately runs for minutes.
const streamPathPrefix = "/api/query/stream"

// Server is the HTTP server for the comparison API.
type Server struct {
	config    *config.Config
	handlers  *handlers.Handlers
	collector *metrics.Collector
	logger    *slog.Logger

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.Mutex
	running      bool
}

// New creates a server. The metrics collector may be nil.
func New(cfg *config.Config, h *handlers.Handlers, collector *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:    cfg,
		handlers:  h,
		collector: collector,
		logger:    logger,
	}
}

// Start starts the HTTP server and blocks until the context is cancelled
// or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.running = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        s.routes(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", s.config.Server.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// routes builds the route table and wraps it in the middleware chain.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/query", s.handlers.Query)
	mux.HandleFunc("POST /api/query/stream", s.handlers.QueryStream)
	mux.HandleFunc("POST /api/conversations", s.handlers.CreateConversation)
	mux.HandleFunc("GET /api/conversations", s.handlers.ListConversations)
	mux.HandleFunc("GET /api/conversations/{id}", s.handlers.GetConversation)
	mux.HandleFunc("DELETE /api/conversations/{id}", s.handlers.DeleteConversation)
	mux.HandleFunc("GET /api/providers", s.handlers.ListProviders)
	mux.HandleFunc("GET /api/usage", s.handlers.Usage)
	mux.HandleFunc("GET /health", s.handlers.Health)
	mux.HandleFunc("GET /ready", s.handlers.Ready)

	if s.collector != nil && s.collector.Enabled() {
		mux.Handle("GET /metrics", s.collector.Handler())
	}

	validator := middleware.NewAPIKeyValidator(s.config.Auth.Keys)

	// Innermost to outermost: auth, timeout, CORS, request id, access
	// logging, panic recovery.
	var handler http.Handler = mux
	handler = middleware.Auth(validator, "/health", "/ready", "/metrics")(handler)
	handler = middleware.Timeout(s.config.Server.RequestTimeout, streamPathPrefix)(handler)
	handler = middleware.CORS(s.config.Server.CORS)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(s.logger, s.collector)(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}
