package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sanjeevceligo/rollout-insights/internal/api/dto"
	"github.com/sanjeevceligo/rollout-insights/internal/config"
	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/errors"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/logger"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/utils"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/validator"
)

// RolloutHandler serves phase resolution endpoints
type RolloutHandler struct {
	service   rollout.Service
	defaults  config.RolloutConfig
	logger    *logger.Logger
	validator *validator.Validator
}

// NewRolloutHandler creates a new rollout handler
func NewRolloutHandler(service rollout.Service, defaults config.RolloutConfig, log *logger.Logger, val *validator.Validator) *RolloutHandler {
	return &RolloutHandler{service: service, defaults: defaults, logger: log, validator: val}
}

// Phases returns the full per-user resolution report
// @Summary Resolve rollout phases
// @Description Compute the phase of every eligible user for a (release, version) pair and reconcile against the audit trail
// @Tags Rollout
// @Produce json
// @Param release query string false "Target release (default from config)"
// @Param version query string false "Target version (default from config)"
// @Param cutoff query string false "Audit cutoff date, YYYY-MM-DD (default from config)"
// @Success 200 {object} dto.ReportDTO "Resolution report"
// @Failure 400 {object} utils.ErrorResponse "Invalid parameters"
// @Failure 502 {object} utils.ErrorResponse "Snapshot source unavailable"
// @Security BearerAuth
// @Router /rollout/phases [get]
func (h *RolloutHandler) Phases(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseResolveQuery(w, r)
	if !ok {
		return
	}

	report, err := h.service.Resolve(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewReportDTO(report))
}

// Summary returns only the aggregated phase counts
// @Summary Rollout phase summary
// @Description Phase and (phase, region) distribution of the current resolution
// @Tags Rollout
// @Produce json
// @Param release query string false "Target release"
// @Param version query string false "Target version"
// @Param cutoff query string false "Audit cutoff date, YYYY-MM-DD"
// @Success 200 {object} dto.SummaryDTO "Aggregated counts"
// @Security BearerAuth
// @Router /rollout/summary [get]
func (h *RolloutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseResolveQuery(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewSummaryDTO(*summary))
}

// Drift returns the audit reconciliation view
// @Summary Rollout drift report
// @Description Users whose computed phase disagrees with the latest audit record, plus users with no recent audit
// @Tags Rollout
// @Produce json
// @Param release query string false "Target release"
// @Param version query string false "Target version"
// @Param cutoff query string false "Audit cutoff date, YYYY-MM-DD"
// @Success 200 {object} map[string]interface{} "Drift and no-recent-audit lists"
// @Security BearerAuth
// @Router /rollout/drift [get]
func (h *RolloutHandler) Drift(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseResolveQuery(w, r)
	if !ok {
		return
	}

	drift, noAudit, err := h.service.Drift(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	entries := make([]dto.DriftEntryDTO, len(drift))
	for i, d := range drift {
		entries[i] = dto.DriftEntryDTO(d)
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"drift":         entries,
		"noRecentAudit": noAudit,
	})
}

// UserAudit returns the audit trail for one user
// @Summary User audit trail
// @Description All rollout audit records for a user, newest first
// @Tags Rollout
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} dto.AuditRecordDTO "Audit records"
// @Failure 404 {object} utils.ErrorResponse "User has no audit records"
// @Security BearerAuth
// @Router /rollout/users/{id}/audit [get]
func (h *RolloutHandler) UserAudit(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		utils.WriteError(w, errors.BadRequest("User id is required"))
		return
	}

	records, err := h.service.UserAudit(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(records) == 0 {
		utils.WriteError(w, errors.NotFound("Audit trail"))
		return
	}

	out := make([]dto.AuditRecordDTO, len(records))
	for i, rec := range records {
		out[i] = dto.AuditRecordDTO{
			UserID:         rec.UserID,
			Phase:          rec.Phase,
			ReleaseVersion: rec.ReleaseVersion,
			Time:           rec.Time,
		}
	}

	utils.WriteSuccess(w, http.StatusOK, out)
}

// parseResolveQuery validates query parameters and applies configured
// defaults. Writes the error response itself when validation fails.
func (h *RolloutHandler) parseResolveQuery(w http.ResponseWriter, r *http.Request) (rollout.ResolveRequest, bool) {
	q := dto.ResolveQuery{
		Release: r.URL.Query().Get("release"),
		Version: r.URL.Query().Get("version"),
		Cutoff:  r.URL.Query().Get("cutoff"),
	}
	if q.Release == "" {
		q.Release = h.defaults.DefaultRelease
	}
	if q.Version == "" {
		q.Version = h.defaults.DefaultVersion
	}

	if errs := h.validator.Validate(q); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Invalid resolution parameters", errs))
		return rollout.ResolveRequest{}, false
	}

	cutoff := h.defaults.DefaultCutoff
	if q.Cutoff != "" {
		// Format already checked by the datetime validation tag.
		cutoff, _ = time.Parse("2006-01-02", q.Cutoff)
	}

	return rollout.ResolveRequest{
		Release: q.Release,
		Version: q.Version,
		Cutoff:  cutoff,
	}, true
}

// writeServiceError maps service errors onto HTTP responses
func writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		utils.WriteError(w, appErr)
		return
	}
	utils.WriteError(w, errors.Internal("Phase resolution failed", err))
}
