package rollout

import (
	"context"
	"time"
)

// Source supplies the read-only snapshots a resolution run operates on. Each
// method must return a complete snapshot consistent as of one point in time;
// any error from a Source aborts the whole run.
type Source interface {
	// LoadUsers returns every user in the directory.
	LoadUsers(ctx context.Context) ([]User, error)

	// LoadLicenses returns the active license per user.
	LoadLicenses(ctx context.Context) ([]License, error)

	// LoadCohortGroups returns the canary cohorts for one (release, version).
	LoadCohortGroups(ctx context.Context, release, version string) ([]CohortGroup, error)

	// LoadAuditRecords returns audit trail entries with Time >= cutoff, with
	// Seq populated in insertion order.
	LoadAuditRecords(ctx context.Context, cutoff time.Time) ([]AuditRecord, error)

	// AuditTrail returns all audit records for a single user, newest first.
	AuditTrail(ctx context.Context, userID string) ([]AuditRecord, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
