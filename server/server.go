// Package server wires the API handlers into an HTTP server with the
// standard middleware stack.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"

	"github.com/joeychilson/redirector/api"
	"github.com/joeychilson/redirector/logger"
)

// Config holds configuration for the API server.
type Config struct {
	// RequestLogger is the slog logger used for HTTP request logging.
	RequestLogger *slog.Logger
	// RateLimit configures per-IP request limiting.
	RateLimit RateLimitConfig
}

// Server is the HTTP server for the API.
type Server struct {
	handler *api.Handler
	logger  logger.Logger
	router  *chi.Mux
}

// New creates an API server with a chi router and middleware stack.
func New(h *api.Handler, log logger.Logger, cfg *Config) *Server {
	if log == nil {
		log = logger.Noop()
	}
	if cfg == nil {
		cfg = &Config{}
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.RequestLogger != nil {
		r.Use(httplog.RequestLogger(cfg.RequestLogger, &httplog.Options{
			Level: slog.LevelInfo,
		}))
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(RateLimit(cfg.RateLimit))

	r.Post("/v1/message", h.HandleMessage)
	r.Post("/v1/navigation", h.HandleNavigation)
	r.Delete("/v1/tabs/{tabID}", h.HandleTabClosed)
	r.Get("/health", h.HandleHealth)

	return &Server{
		handler: h,
		logger:  log,
		router:  r,
	}
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting API server", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// StartWithShutdown starts the HTTP server and shuts it down gracefully
// when the context is canceled.
func (s *Server) StartWithShutdown(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
