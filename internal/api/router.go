package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/blazealert/internal/api/middleware"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestLogger(s.config.Verbose))
	r.Use(middleware.Recoverer)
	r.Use(middleware.PrometheusMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/alerts", func(r chi.Router) {
			r.Post("/", s.submitAlert)
			r.Get("/", s.listAlerts)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getAlert)
				r.Post("/acknowledge", s.acknowledgeAlert)
				r.Post("/resolve", s.resolveAlert)
			})
		})

		r.Get("/stats", s.getStats)
		r.Post("/cleanup", s.cleanupAlerts)
	})

	// Probes (public, no auth)
	r.Get("/healthz", s.healthHandler.Health)
	r.Get("/livez", s.healthHandler.Live)
	r.Get("/readyz", s.healthHandler.Ready)

	return r
}
