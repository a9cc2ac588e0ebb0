package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/errors"
)

// SnapshotSource implements rollout.Source against Postgres. Every Load
// method reads one complete collection; consumers call them back to back at
// the start of a run, so the tables are expected to be snapshot-stable for
// that window (they are append-only or batch-replaced by the ingest jobs).
type SnapshotSource struct {
	db *sql.DB
}

// NewSnapshotSource creates a Postgres-backed snapshot source
func NewSnapshotSource(db *sql.DB) rollout.Source {
	return &SnapshotSource{db: db}
}

func (s *SnapshotSource) LoadUsers(ctx context.Context) ([]rollout.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, COALESCE(email_domain, ''), COALESCE(subdomain, ''), verified FROM users`)
	if err != nil {
		return nil, errors.SnapshotError("users", err)
	}
	defer rows.Close()

	var users []rollout.User
	for rows.Next() {
		var u rollout.User
		if err := rows.Scan(&u.ID, &u.Email, &u.EmailDomain, &u.Subdomain, &u.Verified); err != nil {
			return nil, errors.SnapshotError("users", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.SnapshotError("users", err)
	}
	return users, nil
}

func (s *SnapshotSource) LoadLicenses(ctx context.Context) ([]rollout.License, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, tier, type, trial_end_date, expires FROM licenses`)
	if err != nil {
		return nil, errors.SnapshotError("licenses", err)
	}
	defer rows.Close()

	var licenses []rollout.License
	for rows.Next() {
		var l rollout.License
		var trialEnd, expires sql.NullTime
		if err := rows.Scan(&l.UserID, &l.Tier, &l.Type, &trialEnd, &expires); err != nil {
			return nil, errors.SnapshotError("licenses", err)
		}
		if trialEnd.Valid {
			t := trialEnd.Time
			l.TrialEndDate = &t
		}
		if expires.Valid {
			t := expires.Time
			l.Expires = &t
		}
		licenses = append(licenses, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.SnapshotError("licenses", err)
	}
	return licenses, nil
}

func (s *SnapshotSource) LoadCohortGroups(ctx context.Context, release, version string) ([]rollout.CohortGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT canary_group_name, release_name, version, user_ids
		 FROM release_canary_groups
		 WHERE release_name = $1 AND version = $2`, release, version)
	if err != nil {
		return nil, errors.SnapshotError("cohort groups", err)
	}
	defer rows.Close()

	var groups []rollout.CohortGroup
	for rows.Next() {
		var g rollout.CohortGroup
		if err := rows.Scan(&g.Name, &g.Release, &g.Version, pq.Array(&g.UserIDs)); err != nil {
			return nil, errors.SnapshotError("cohort groups", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.SnapshotError("cohort groups", err)
	}
	return groups, nil
}

func (s *SnapshotSource) LoadAuditRecords(ctx context.Context, cutoff time.Time) ([]rollout.AuditRecord, error) {
	// seq is the insertion-order tie-break key; the ORDER BY is advisory
	// only, record selection happens in the engine.
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, uid, phase, release_version, time
		 FROM canary_rollout_audit
		 WHERE time >= $1
		 ORDER BY time, seq`, cutoff)
	if err != nil {
		return nil, errors.SnapshotError("audit records", err)
	}
	defer rows.Close()

	return scanAuditRecords(rows)
}

func (s *SnapshotSource) AuditTrail(ctx context.Context, userID string) ([]rollout.AuditRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, uid, phase, release_version, time
		 FROM canary_rollout_audit
		 WHERE uid = $1
		 ORDER BY time DESC, seq DESC`, userID)
	if err != nil {
		return nil, errors.SnapshotError("audit trail", err)
	}
	defer rows.Close()

	return scanAuditRecords(rows)
}

func (s *SnapshotSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func scanAuditRecords(rows *sql.Rows) ([]rollout.AuditRecord, error) {
	var records []rollout.AuditRecord
	for rows.Next() {
		var rec rollout.AuditRecord
		if err := rows.Scan(&rec.Seq, &rec.UserID, &rec.Phase, &rec.ReleaseVersion, &rec.Time); err != nil {
			return nil, errors.SnapshotError("audit records", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.SnapshotError("audit records", err)
	}
	return records, nil
}
