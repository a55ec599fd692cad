// Package api provides the HTTP REST API server.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/good-yellow-bee/blazealert/internal/aggregator"
	"github.com/good-yellow-bee/blazealert/internal/api/health"
	"github.com/good-yellow-bee/blazealert/internal/collector"
)

// Config contains HTTP API server configuration.
type Config struct {
	Address      string
	QueryTimeout time.Duration // Timeout for storage-backed API calls
	Verbose      bool
}

// SetDefaults applies default values for missing configuration.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = 10 * time.Second
	}
}

// Server is the HTTP API server.
type Server struct {
	config        *Config
	aggregator    *aggregator.Aggregator
	collector     *collector.Collector
	healthHandler *health.Handler
	server        *http.Server
}

// New creates a new API server.
func New(cfg *Config, agg *aggregator.Aggregator, coll *collector.Collector) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if agg == nil {
		return nil, fmt.Errorf("aggregator is required")
	}
	if coll == nil {
		return nil, fmt.Errorf("collector is required")
	}

	cfg.SetDefaults()

	s := &Server{
		config:        cfg,
		aggregator:    agg,
		collector:     coll,
		healthHandler: health.NewHandler(),
	}

	s.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.setupRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run starts the HTTP server and blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		log.Printf("HTTP API listening on %s", s.config.Address)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutting down HTTP API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.config.Address
}

// RegisterHealthChecker adds a health checker to the server.
func (s *Server) RegisterHealthChecker(c health.Checker) {
	if s.healthHandler != nil {
		s.healthHandler.RegisterChecker(c)
	}
}
