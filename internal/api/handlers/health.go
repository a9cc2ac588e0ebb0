package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/logger"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	source rollout.Source
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(source rollout.Source, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		source: source,
		logger: log,
	}
}

// Healthz handles liveness probe
// @Summary Liveness probe
// @Description Check if the application is alive
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is alive"
// @Router /health [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Readyz handles readiness probe
// @Summary Readiness probe
// @Description Check if the snapshot source is reachable
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is ready"
// @Failure 503 {object} utils.ErrorResponse "Service unavailable"
// @Router /readyz [get]
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.source.Ping(ctx); err != nil {
		h.logger.ErrorWithErr(err, "Snapshot source ping failed")
		utils.WriteErrorMessage(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Snapshot source unreachable")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status": "ready",
		"source": "connected",
	})
}
