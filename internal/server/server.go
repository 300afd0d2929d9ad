// Package server exposes template matching over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/mtm/internal/config"
)

// Server wraps the HTTP server and its matching configuration.
type Server struct {
	cfg        config.ServerConfig
	matching   config.MatchingConfig
	httpServer *http.Server
}

// New creates a server from the application configuration.
func New(cfg *config.Config) *Server {
	s := &Server{
		cfg:      cfg.Server,
		matching: cfg.Matching,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/match", s.matchHandler)
	mux.HandleFunc("/healthz", s.healthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.instrument(mux),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	return s
}

// Start runs the server until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	slog.Info("Starting matching server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down matching server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the configured HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// statusRecorder captures the response status for request metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request counts and durations per endpoint.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, fmt.Sprintf("%d", rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
