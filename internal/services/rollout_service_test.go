package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/sanjeevceligo/rollout-insights/internal/pkg/errors"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/logger"
	"github.com/sanjeevceligo/rollout-insights/internal/resolver"
	"github.com/sanjeevceligo/rollout-insights/internal/testutil"
)

func newTestService(source rollout.Source) rollout.Service {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	engine := resolver.NewEngine("celigo.com", rollout.EligibleLicenseTypes,
		resolver.WithClock(func() time.Time { return testutil.Date(2025, time.June, 10) }))
	return NewRolloutService(source, engine, log)
}

func testRequest() rollout.ResolveRequest {
	return rollout.ResolveRequest{
		Release: "2025.5.1",
		Version: "1.0",
		Cutoff:  testutil.Date(2025, time.June, 4),
	}
}

func populatedSource() *testutil.MockSource {
	src := testutil.NewMockSource()
	src.Users = []rollout.User{
		{ID: "u-1", Email: "dev@celigo.com", Verified: true},
		{ID: "u-2", Email: "t@startup.io"},
		{ID: "u-3", Email: "c@bigcorp.com", Verified: true},
	}
	src.Licenses = []rollout.License{
		{UserID: "u-1", Tier: "premium", Type: "platform"},
		{UserID: "u-2", Tier: "free", Type: "endpoint", TrialEndDate: testutil.TimePtr(testutil.Date(2025, time.July, 1))},
		{UserID: "u-3", Tier: "premium", Type: "integrator"},
	}
	src.Groups = []rollout.CohortGroup{
		{Name: "grp-B", Release: "2025.5.1", Version: "1.0", UserIDs: []string{"u-3"}},
	}
	src.Audits = []rollout.AuditRecord{
		{UserID: "u-1", Phase: "internal", Time: testutil.Date(2025, time.June, 8), Seq: 1},
		{UserID: "u-3", Phase: "grp-A", Time: testutil.Date(2025, time.June, 8), Seq: 2},
	}
	return src
}

func TestRolloutService_Resolve(t *testing.T) {
	service := newTestService(populatedSource())

	report, err := service.Resolve(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	wantPhases := map[string]string{
		"u-1": rollout.PhaseInternal,
		"u-2": rollout.PhaseFreeTrial,
		"u-3": "grp-B",
	}
	if len(report.PerUser) != len(wantPhases) {
		t.Fatalf("PerUser = %d entries, want %d", len(report.PerUser), len(wantPhases))
	}
	for _, a := range report.PerUser {
		if want := wantPhases[a.UserID]; a.Phase != want {
			t.Errorf("phase(%s) = %q, want %q", a.UserID, a.Phase, want)
		}
	}

	if len(report.Drift) != 1 || report.Drift[0].UserID != "u-3" {
		t.Errorf("Drift = %v, want one entry for u-3", report.Drift)
	}
}

func TestRolloutService_ResolveLoaderFailureIsFatal(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*testutil.MockSource)
	}{
		{"users load fails", func(m *testutil.MockSource) { m.UsersErr = fmt.Errorf("connection reset") }},
		{"licenses load fails", func(m *testutil.MockSource) { m.LicensesErr = fmt.Errorf("connection reset") }},
		{"groups load fails", func(m *testutil.MockSource) { m.GroupsErr = fmt.Errorf("connection reset") }},
		{"audits load fails", func(m *testutil.MockSource) { m.AuditsErr = fmt.Errorf("connection reset") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := populatedSource()
			tt.setup(src)
			service := newTestService(src)

			report, err := service.Resolve(context.Background(), testRequest())
			if err == nil {
				t.Fatal("Resolve() error = nil, want snapshot error")
			}
			if report != nil {
				t.Error("Resolve() returned a partial report alongside an error")
			}

			appErr, ok := err.(*apperrors.AppError)
			if !ok {
				t.Fatalf("Resolve() error type = %T, want *AppError", err)
			}
			if appErr.Code != apperrors.ErrCodeSnapshot {
				t.Errorf("error code = %q, want %q", appErr.Code, apperrors.ErrCodeSnapshot)
			}
		})
	}
}

func TestRolloutService_Summary(t *testing.T) {
	service := newTestService(populatedSource())

	summary, err := service.Summary(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if summary.Total != 3 {
		t.Errorf("Total = %d, want 3", summary.Total)
	}
	if summary.ByPhase[rollout.PhaseInternal] != 1 || summary.ByPhase["grp-B"] != 1 {
		t.Errorf("ByPhase = %v", summary.ByPhase)
	}
}

func TestRolloutService_Drift(t *testing.T) {
	service := newTestService(populatedSource())

	drift, noAudit, err := service.Drift(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Drift() error = %v", err)
	}

	if len(drift) != 1 || drift[0].ResolvedPhase != "grp-B" || drift[0].AuditedPhase != "grp-A" {
		t.Errorf("Drift() = %v", drift)
	}
	if len(noAudit) != 1 || noAudit[0] != "u-2" {
		t.Errorf("noAudit = %v, want [u-2]", noAudit)
	}
}

func TestRolloutService_UserAudit(t *testing.T) {
	src := populatedSource()
	service := newTestService(src)

	records, err := service.UserAudit(context.Background(), "u-3")
	if err != nil {
		t.Fatalf("UserAudit() error = %v", err)
	}
	if len(records) != 1 || records[0].Phase != "grp-A" {
		t.Errorf("UserAudit() = %v", records)
	}

	src.AuditsErr = fmt.Errorf("connection reset")
	if _, err := service.UserAudit(context.Background(), "u-3"); err == nil {
		t.Error("UserAudit() error = nil after source failure")
	}
}
