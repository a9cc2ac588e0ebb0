package warehouse

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/sanjeevceligo/rollout-insights/internal/config"
	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/errors"
)

// SnapshotSource implements rollout.Source against the analytics warehouse.
// This is the deployment variant used when the source-of-truth collections
// are replicated into BigQuery rather than served from Postgres.
type SnapshotSource struct {
	client  *bigquery.Client
	dataset string
}

// New connects to BigQuery and returns a warehouse snapshot source
func New(ctx context.Context, cfg config.WarehouseConfig) (*SnapshotSource, error) {
	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create warehouse client: %w", err)
	}
	client.Location = cfg.Location

	return &SnapshotSource{
		client:  client,
		dataset: cfg.Dataset,
	}, nil
}

// Close releases the underlying client
func (s *SnapshotSource) Close() error {
	return s.client.Close()
}

type userRow struct {
	ID          string              `bigquery:"id"`
	Email       string              `bigquery:"email"`
	EmailDomain bigquery.NullString `bigquery:"email_domain"`
	Subdomain   bigquery.NullString `bigquery:"subdomain"`
	Verified    bool                `bigquery:"verified"`
}

func (s *SnapshotSource) LoadUsers(ctx context.Context) ([]rollout.User, error) {
	q := s.client.Query(fmt.Sprintf(
		`SELECT id, email, email_domain, subdomain, verified FROM %s.users`, s.dataset))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, errors.SnapshotError("users", err)
	}

	var users []rollout.User
	for {
		var row userRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.SnapshotError("users", err)
		}
		users = append(users, rollout.User{
			ID:          row.ID,
			Email:       row.Email,
			EmailDomain: row.EmailDomain.StringVal,
			Subdomain:   row.Subdomain.StringVal,
			Verified:    row.Verified,
		})
	}
	return users, nil
}

type licenseRow struct {
	UserID       string                 `bigquery:"user_id"`
	Tier         string                 `bigquery:"tier"`
	Type         string                 `bigquery:"type"`
	TrialEndDate bigquery.NullTimestamp `bigquery:"trial_end_date"`
	Expires      bigquery.NullTimestamp `bigquery:"expires"`
}

func (s *SnapshotSource) LoadLicenses(ctx context.Context) ([]rollout.License, error) {
	q := s.client.Query(fmt.Sprintf(
		`SELECT user_id, tier, type, trial_end_date, expires FROM %s.licenses`, s.dataset))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, errors.SnapshotError("licenses", err)
	}

	var licenses []rollout.License
	for {
		var row licenseRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.SnapshotError("licenses", err)
		}
		l := rollout.License{
			UserID: row.UserID,
			Tier:   row.Tier,
			Type:   row.Type,
		}
		if row.TrialEndDate.Valid {
			t := row.TrialEndDate.Timestamp
			l.TrialEndDate = &t
		}
		if row.Expires.Valid {
			t := row.Expires.Timestamp
			l.Expires = &t
		}
		licenses = append(licenses, l)
	}
	return licenses, nil
}

type cohortRow struct {
	Name    string   `bigquery:"canary_group_name"`
	Release string   `bigquery:"release_name"`
	Version string   `bigquery:"version"`
	UserIDs []string `bigquery:"user_ids"`
}

func (s *SnapshotSource) LoadCohortGroups(ctx context.Context, release, version string) ([]rollout.CohortGroup, error) {
	q := s.client.Query(fmt.Sprintf(
		`SELECT canary_group_name, release_name, version, user_ids
		 FROM %s.release_canary_groups
		 WHERE release_name = @release AND version = @version`, s.dataset))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "release", Value: release},
		{Name: "version", Value: version},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, errors.SnapshotError("cohort groups", err)
	}

	var groups []rollout.CohortGroup
	for {
		var row cohortRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.SnapshotError("cohort groups", err)
		}
		groups = append(groups, rollout.CohortGroup{
			Name:    row.Name,
			Release: row.Release,
			Version: row.Version,
			UserIDs: row.UserIDs,
		})
	}
	return groups, nil
}

type auditRow struct {
	Seq            int64     `bigquery:"seq"`
	UserID         string    `bigquery:"uid"`
	Phase          string    `bigquery:"phase"`
	ReleaseVersion string    `bigquery:"release_version"`
	Time           time.Time `bigquery:"time"`
}

func (s *SnapshotSource) LoadAuditRecords(ctx context.Context, cutoff time.Time) ([]rollout.AuditRecord, error) {
	// Ordering here is advisory; the most-recent selection and its tie-break
	// live in the engine, not in the query.
	q := s.client.Query(fmt.Sprintf(
		`SELECT seq, uid, phase, release_version, time
		 FROM %s.canary_rollout_audit
		 WHERE time >= @cutoff
		 ORDER BY time, seq`, s.dataset))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "cutoff", Value: cutoff},
	}

	return s.readAuditRows(ctx, q)
}

func (s *SnapshotSource) AuditTrail(ctx context.Context, userID string) ([]rollout.AuditRecord, error) {
	q := s.client.Query(fmt.Sprintf(
		`SELECT seq, uid, phase, release_version, time
		 FROM %s.canary_rollout_audit
		 WHERE uid = @uid
		 ORDER BY time DESC, seq DESC`, s.dataset))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "uid", Value: userID},
	}

	return s.readAuditRows(ctx, q)
}

// Ping runs a trivial query to verify warehouse connectivity
func (s *SnapshotSource) Ping(ctx context.Context) error {
	q := s.client.Query("SELECT 1")
	it, err := q.Read(ctx)
	if err != nil {
		return err
	}
	var row []bigquery.Value
	if err := it.Next(&row); err != nil && err != iterator.Done {
		return err
	}
	return nil
}

func (s *SnapshotSource) readAuditRows(ctx context.Context, q *bigquery.Query) ([]rollout.AuditRecord, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, errors.SnapshotError("audit records", err)
	}

	var records []rollout.AuditRecord
	for {
		var row auditRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.SnapshotError("audit records", err)
		}
		records = append(records, rollout.AuditRecord{
			Seq:            row.Seq,
			UserID:         row.UserID,
			Phase:          row.Phase,
			ReleaseVersion: row.ReleaseVersion,
			Time:           row.Time,
		})
	}
	return records, nil
}
