package client

import "time"

// Assignment is one user's resolved phase
type Assignment struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Phase    string `json:"phase"`
	Region   string `json:"region"`
	Tier     string `json:"tier"`
	Verified bool   `json:"verified"`
}

// PhaseRegionCount is one cell of the (phase, region) breakdown
type PhaseRegionCount struct {
	Phase  string `json:"phase"`
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// Summary is the aggregated view of a resolution run
type Summary struct {
	ByPhase       map[string]int     `json:"byPhase"`
	ByPhaseRegion []PhaseRegionCount `json:"byPhaseRegion"`
	Verified      int                `json:"verified"`
	Unverified    int                `json:"unverified"`
	Total         int                `json:"total"`
}

// DriftEntry is one computed-vs-audited phase mismatch
type DriftEntry struct {
	UserID        string    `json:"userId"`
	ResolvedPhase string    `json:"resolvedPhase"`
	AuditedPhase  string    `json:"auditedPhase"`
	AuditTime     time.Time `json:"auditTime"`
}

// DriftReport pairs the drift list with users missing recent audits
type DriftReport struct {
	Drift         []DriftEntry `json:"drift"`
	NoRecentAudit []string     `json:"noRecentAudit"`
}

// UserError flags a user excluded from resolution by a data inconsistency
type UserError struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

// Report is the full resolution report
type Report struct {
	Release       string       `json:"release"`
	Version       string       `json:"version"`
	Cutoff        time.Time    `json:"cutoff"`
	PerUser       []Assignment `json:"perUser"`
	Summary       Summary      `json:"summary"`
	Drift         []DriftEntry `json:"drift"`
	NoRecentAudit []string     `json:"noRecentAudit"`
	Errors        []UserError  `json:"errors"`
	Warnings      []string     `json:"warnings,omitempty"`
	GeneratedAt   time.Time    `json:"generatedAt"`
}

// AuditRecord is one audit trail entry
type AuditRecord struct {
	UserID         string    `json:"userId"`
	Phase          string    `json:"phase"`
	ReleaseVersion string    `json:"releaseVersion"`
	Time           time.Time `json:"time"`
}
