package services

import (
	"context"
	"time"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/errors"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/logger"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/metrics"
	"github.com/sanjeevceligo/rollout-insights/internal/resolver"
)

// RolloutService implements rollout.Service
type RolloutService struct {
	source rollout.Source
	engine *resolver.Engine
	logger *logger.Logger
}

// NewRolloutService creates a new rollout service
func NewRolloutService(source rollout.Source, engine *resolver.Engine, log *logger.Logger) rollout.Service {
	return &RolloutService{
		source: source,
		engine: engine,
		logger: log,
	}
}

// Resolve loads a fresh snapshot and computes the full phase report. A
// loader failure aborts the run; per-user anomalies are carried inside the
// report instead.
func (s *RolloutService) Resolve(ctx context.Context, req rollout.ResolveRequest) (*rollout.Report, error) {
	start := time.Now()

	snap, err := s.loadSnapshot(ctx, req)
	if err != nil {
		metrics.RecordResolutionRun("error", time.Since(start))
		s.logger.ErrorWithErr(err, "Failed to load resolution snapshot")
		return nil, err
	}

	report := s.engine.Run(snap, req.Release, req.Version, req.Cutoff)

	metrics.RecordResolutionRun("ok", time.Since(start))
	metrics.AddSnapshotWarnings(len(report.Warnings))

	s.logger.WithFields(map[string]interface{}{
		"release":         req.Release,
		"version":         req.Version,
		"cutoff":          req.Cutoff.Format(time.RFC3339),
		"eligible_users":  len(report.PerUser),
		"drift":           len(report.Drift),
		"no_recent_audit": len(report.NoRecentAudit),
		"errors":          len(report.Errors),
		"warnings":        len(report.Warnings),
		"duration":        time.Since(start).String(),
	}).Info("Phase resolution run completed")

	for _, w := range report.Warnings {
		s.logger.Warn(w)
	}

	return report, nil
}

// Summary computes only the aggregated counts of a resolution run.
func (s *RolloutService) Summary(ctx context.Context, req rollout.ResolveRequest) (*rollout.Summary, error) {
	report, err := s.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return &report.Summary, nil
}

// Drift computes the reconciliation slice of a resolution run.
func (s *RolloutService) Drift(ctx context.Context, req rollout.ResolveRequest) ([]rollout.DriftEntry, []string, error) {
	report, err := s.Resolve(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	return report.Drift, report.NoRecentAudit, nil
}

// UserAudit returns the audit trail for one user, newest first.
func (s *RolloutService) UserAudit(ctx context.Context, userID string) ([]rollout.AuditRecord, error) {
	records, err := s.source.AuditTrail(ctx, userID)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"user_id": userID,
		}).ErrorWithErr(err, "Failed to load audit trail")
		return nil, errors.SnapshotError("audit trail", err)
	}
	return records, nil
}

// loadSnapshot pulls the four collections from the configured source. Each
// one must arrive complete; any failure is fatal for the run.
func (s *RolloutService) loadSnapshot(ctx context.Context, req rollout.ResolveRequest) (*resolver.Snapshot, error) {
	users, err := s.source.LoadUsers(ctx)
	if err != nil {
		return nil, errors.SnapshotError("users", err)
	}

	licenses, err := s.source.LoadLicenses(ctx)
	if err != nil {
		return nil, errors.SnapshotError("licenses", err)
	}

	groups, err := s.source.LoadCohortGroups(ctx, req.Release, req.Version)
	if err != nil {
		return nil, errors.SnapshotError("cohort groups", err)
	}

	audits, err := s.source.LoadAuditRecords(ctx, req.Cutoff)
	if err != nil {
		return nil, errors.SnapshotError("audit records", err)
	}

	return resolver.BuildSnapshot(users, licenses, groups, audits), nil
}
