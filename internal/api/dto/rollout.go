package dto

import (
	"time"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
)

// ResolveQuery holds the parsed query parameters of a resolution request.
// Uses camelCase for frontend compatibility
type ResolveQuery struct {
	Release string `json:"release" validate:"required,min=1,max=64"`
	Version string `json:"version" validate:"required,min=1,max=32"`
	Cutoff  string `json:"cutoff,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// AssignmentDTO is one user's resolved phase in API responses
type AssignmentDTO struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Phase    string `json:"phase"`
	Region   string `json:"region"`
	Tier     string `json:"tier"`
	Verified bool   `json:"verified"`
}

// PhaseRegionCountDTO is one cell of the (phase, region) breakdown
type PhaseRegionCountDTO struct {
	Phase  string `json:"phase"`
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// SummaryDTO is the aggregated view of a resolution run
type SummaryDTO struct {
	ByPhase       map[string]int        `json:"byPhase"`
	ByPhaseRegion []PhaseRegionCountDTO `json:"byPhaseRegion"`
	Verified      int                   `json:"verified"`
	Unverified    int                   `json:"unverified"`
	Total         int                   `json:"total"`
}

// DriftEntryDTO is one computed-vs-audited phase mismatch
type DriftEntryDTO struct {
	UserID        string    `json:"userId"`
	ResolvedPhase string    `json:"resolvedPhase"`
	AuditedPhase  string    `json:"auditedPhase"`
	AuditTime     time.Time `json:"auditTime"`
}

// UserErrorDTO flags a user excluded from resolution by a data inconsistency
type UserErrorDTO struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

// ReportDTO is the full resolution report
type ReportDTO struct {
	Release       string          `json:"release"`
	Version       string          `json:"version"`
	Cutoff        time.Time       `json:"cutoff"`
	PerUser       []AssignmentDTO `json:"perUser"`
	Summary       SummaryDTO      `json:"summary"`
	Drift         []DriftEntryDTO `json:"drift"`
	NoRecentAudit []string        `json:"noRecentAudit"`
	Errors        []UserErrorDTO  `json:"errors"`
	Warnings      []string        `json:"warnings,omitempty"`
	GeneratedAt   time.Time       `json:"generatedAt"`
}

// AuditRecordDTO is one audit trail entry
type AuditRecordDTO struct {
	UserID         string    `json:"userId"`
	Phase          string    `json:"phase"`
	ReleaseVersion string    `json:"releaseVersion"`
	Time           time.Time `json:"time"`
}

// NewSummaryDTO converts a domain summary
func NewSummaryDTO(s rollout.Summary) SummaryDTO {
	out := SummaryDTO{
		ByPhase:    s.ByPhase,
		Verified:   s.Verified,
		Unverified: s.Unverified,
		Total:      s.Total,
	}
	out.ByPhaseRegion = make([]PhaseRegionCountDTO, len(s.ByPhaseRegion))
	for i, c := range s.ByPhaseRegion {
		out.ByPhaseRegion[i] = PhaseRegionCountDTO(c)
	}
	return out
}

// NewReportDTO converts a domain report
func NewReportDTO(r *rollout.Report) ReportDTO {
	out := ReportDTO{
		Release:       r.Release,
		Version:       r.Version,
		Cutoff:        r.Cutoff,
		Summary:       NewSummaryDTO(r.Summary),
		NoRecentAudit: r.NoRecentAudit,
		Warnings:      r.Warnings,
		GeneratedAt:   r.GeneratedAt,
	}
	out.PerUser = make([]AssignmentDTO, len(r.PerUser))
	for i, a := range r.PerUser {
		out.PerUser[i] = AssignmentDTO(a)
	}
	out.Drift = make([]DriftEntryDTO, len(r.Drift))
	for i, d := range r.Drift {
		out.Drift[i] = DriftEntryDTO(d)
	}
	out.Errors = make([]UserErrorDTO, len(r.Errors))
	for i, e := range r.Errors {
		out.Errors[i] = UserErrorDTO(e)
	}
	return out
}
