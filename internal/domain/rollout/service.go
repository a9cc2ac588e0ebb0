package rollout

import (
	"context"
	"time"
)

// ResolveRequest identifies the target of a resolution run.
type ResolveRequest struct {
	Release string
	Version string
	Cutoff  time.Time
}

// Service defines the rollout business logic consumed by the API layer.
type Service interface {
	// Resolve computes the full phase report for a (release, version, cutoff).
	Resolve(ctx context.Context, req ResolveRequest) (*Report, error)

	// Summary computes only the aggregated counts of a resolution run.
	Summary(ctx context.Context, req ResolveRequest) (*Summary, error)

	// Drift computes the reconciliation slice of a resolution run: drift
	// entries plus the users with no recent audit record.
	Drift(ctx context.Context, req ResolveRequest) ([]DriftEntry, []string, error)

	// UserAudit returns the audit trail for one user, newest first.
	UserAudit(ctx context.Context, userID string) ([]AuditRecord, error)
}
