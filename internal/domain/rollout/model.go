package rollout

import "time"

// User is a read-only snapshot of a platform user supplied by the user
// directory collaborator.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	EmailDomain string `json:"email_domain"`
	Subdomain   string `json:"subdomain,omitempty"`
	Verified    bool   `json:"verified"`
}

// Region returns the user's region marker. A populated subdomain attribute
// means the account lives in the secondary (EU) region, otherwise the
// primary (NA) region.
func (u User) Region() string {
	if u.Subdomain != "" {
		return RegionEU
	}
	return RegionNA
}

// License is the active license for a user. Trial and expiry dates are
// optional; non-expiring tiers carry no expiry at all.
type License struct {
	UserID       string     `json:"user_id"`
	Tier         string     `json:"tier"`
	Type         string     `json:"type"`
	TrialEndDate *time.Time `json:"trial_end_date,omitempty"`
	Expires      *time.Time `json:"expires,omitempty"`
}

// CohortGroup is a named canary cohort scoped to one (release, version) pair.
type CohortGroup struct {
	Name    string   `json:"name"`
	Release string   `json:"release"`
	Version string   `json:"version"`
	UserIDs []string `json:"user_ids"`
}

// AuditRecord is one immutable entry from the rollout audit trail. Seq is the
// insertion order within a snapshot; it is the documented tie-break key when
// two records for the same user share a timestamp.
type AuditRecord struct {
	UserID         string    `json:"user_id"`
	Phase          string    `json:"phase"`
	ReleaseVersion string    `json:"release_version"`
	Time           time.Time `json:"time"`
	Seq            int64     `json:"seq"`
}

// License tiers with engine-level meaning. Paid tiers are opaque strings and
// only matter as "not none, not free".
const (
	TierNone = "none"
	TierFree = "free"
)

// License types eligible for phase resolution.
var EligibleLicenseTypes = []string{"integrator", "endpoint", "platform", "diy"}

// Resolved phase labels. Cohort phases take the cohort's own name.
const (
	PhaseInternal         = "internal"
	PhaseFreeTrial        = "free-trial"
	PhaseFree             = "free"
	PhaseUnassigned       = "unassigned"
	PhaseAmbiguousCohort  = "error:ambiguous-cohort"
	ReasonAmbiguousCohort = "ambiguous-cohort"
)

// Regions. Exactly two exist; see User.Region.
const (
	RegionNA = "NA"
	RegionEU = "EU"
)

// Assignment is the computed phase for one user. Never persisted; recomputed
// on every run.
type Assignment struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Phase    string `json:"phase"`
	Region   string `json:"region"`
	Tier     string `json:"tier"`
	Verified bool   `json:"verified"`
}

// PhaseRegionCount is one cell of the (phase, region) breakdown.
type PhaseRegionCount struct {
	Phase  string `json:"phase"`
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// Summary holds the aggregated view of a resolution run.
type Summary struct {
	ByPhase       map[string]int     `json:"by_phase"`
	ByPhaseRegion []PhaseRegionCount `json:"by_phase_region"`
	Verified      int                `json:"verified"`
	Unverified    int                `json:"unverified"`
	Total         int                `json:"total"`
}

// DriftEntry reports a mismatch between the computed phase and the most
// recent audit record at or after the cutoff.
type DriftEntry struct {
	UserID        string    `json:"user_id"`
	ResolvedPhase string    `json:"resolved_phase"`
	AuditedPhase  string    `json:"audited_phase"`
	AuditTime     time.Time `json:"audit_time"`
}

// UserError flags a user whose resolution failed for a business-rule reason.
// Other users in the same run are unaffected.
type UserError struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// Report is the full output of one resolution run.
type Report struct {
	Release       string       `json:"release"`
	Version       string       `json:"version"`
	Cutoff        time.Time    `json:"cutoff"`
	PerUser       []Assignment `json:"per_user"`
	Summary       Summary      `json:"summary"`
	Drift         []DriftEntry `json:"drift"`
	NoRecentAudit []string     `json:"no_recent_audit"`
	Errors        []UserError  `json:"errors"`
	Warnings      []string     `json:"warnings,omitempty"`
	GeneratedAt   time.Time    `json:"generated_at"`
}
