package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/sanjeevceligo/rollout-insights/internal/api/handlers"
	"github.com/sanjeevceligo/rollout-insights/internal/api/middleware"
	"github.com/sanjeevceligo/rollout-insights/internal/config"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/logger"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/metrics"
)

// Handlers groups the HTTP handlers wired into the router
type Handlers struct {
	Health  *handlers.HealthHandler
	Rollout *handlers.RolloutHandler
}

// New builds the HTTP handler tree
func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(metrics.Middleware)
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/swagger/*", httpSwagger.WrapHandler)

		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)
		r.Handle("/metrics", metrics.Handler())
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth.JWTSecret))

		r.Route("/api/v1/rollout", func(r chi.Router) {
			r.Get("/phases", h.Rollout.Phases)
			r.Get("/summary", h.Rollout.Summary)
			r.Get("/drift", h.Rollout.Drift)
			r.Get("/users/{id}/audit", h.Rollout.UserAudit)
		})
	})

	return r
}
