package resolver

import (
	"reflect"
	"testing"
	"time"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
	"github.com/sanjeevceligo/rollout-insights/internal/testutil"
)

const (
	testRelease = "2025.5.1"
	testVersion = "1.0"
)

func testClock() time.Time {
	return testutil.Date(2025, time.June, 10)
}

func testEngine(opts ...Option) *Engine {
	opts = append([]Option{WithClock(testClock)}, opts...)
	return NewEngine("celigo.com", rollout.EligibleLicenseTypes, opts...)
}

// fixtureSnapshot covers every phase outcome in one population.
func fixtureSnapshot() *Snapshot {
	users := []rollout.User{
		{ID: "u-internal", Email: "dev@celigo.com", Verified: true},
		{ID: "u-trial", Email: "t@startup.io", Verified: true},
		{ID: "u-free", Email: "f@startup.io"},
		{ID: "u-cohort", Email: "c@bigcorp.com", Subdomain: "eu1", Verified: true},
		{ID: "u-unassigned", Email: "n@bigcorp.com", Verified: true},
		{ID: "u-none", Email: "x@bigcorp.com"},
		{ID: "u-expired", Email: "e@bigcorp.com"},
	}
	licenses := []rollout.License{
		{UserID: "u-internal", Tier: "premium", Type: "platform"},
		{UserID: "u-trial", Tier: "free", Type: "endpoint", TrialEndDate: testutil.TimePtr(testutil.Date(2025, time.July, 1))},
		{UserID: "u-free", Tier: "free", Type: "endpoint", TrialEndDate: testutil.TimePtr(testutil.Date(2025, time.May, 1))},
		{UserID: "u-cohort", Tier: "premium", Type: "platform"},
		{UserID: "u-unassigned", Tier: "premium", Type: "integrator"},
		{UserID: "u-none", Tier: "none", Type: "platform"},
		{UserID: "u-expired", Tier: "premium", Type: "platform", Expires: testutil.TimePtr(testutil.Date(2025, time.January, 1))},
	}
	groups := []rollout.CohortGroup{
		{Name: "grp-A", Release: testRelease, Version: testVersion, UserIDs: []string{"u-internal"}},
		{Name: "grp-B", Release: testRelease, Version: testVersion, UserIDs: []string{"u-cohort"}},
	}
	audits := []rollout.AuditRecord{
		{UserID: "u-internal", Phase: "internal", Time: testutil.Date(2025, time.June, 8), Seq: 1},
		{UserID: "u-trial", Phase: "free-trial", Time: testutil.Date(2025, time.June, 8), Seq: 2},
		{UserID: "u-free", Phase: "free", Time: testutil.Date(2025, time.June, 8), Seq: 3},
		{UserID: "u-cohort", Phase: "grp-A", Time: testutil.Date(2025, time.June, 8), Seq: 4},
	}
	return BuildSnapshot(users, licenses, groups, audits)
}

func phaseOf(t *testing.T, report *rollout.Report, userID string) string {
	t.Helper()
	for _, a := range report.PerUser {
		if a.UserID == userID {
			return a.Phase
		}
	}
	t.Fatalf("user %q not in report", userID)
	return ""
}

func TestEngineRunPhases(t *testing.T) {
	report := testEngine().Run(fixtureSnapshot(), testRelease, testVersion, testutil.Date(2025, time.June, 4))

	tests := []struct {
		userID string
		want   string
	}{
		{"u-internal", rollout.PhaseInternal},
		{"u-trial", rollout.PhaseFreeTrial},
		{"u-free", rollout.PhaseFree},
		{"u-cohort", "grp-B"},
		{"u-unassigned", rollout.PhaseUnassigned},
	}
	for _, tt := range tests {
		if got := phaseOf(t, report, tt.userID); got != tt.want {
			t.Errorf("phase(%s) = %q, want %q", tt.userID, got, tt.want)
		}
	}

	// Ineligible licenses never make it into the report.
	for _, a := range report.PerUser {
		if a.UserID == "u-none" || a.UserID == "u-expired" {
			t.Errorf("ineligible user %s present in report", a.UserID)
		}
	}
	if len(report.PerUser) != 5 {
		t.Errorf("PerUser = %d entries, want 5", len(report.PerUser))
	}
}

func TestEngineRunRegions(t *testing.T) {
	report := testEngine().Run(fixtureSnapshot(), testRelease, testVersion, testutil.Date(2025, time.June, 4))

	for _, a := range report.PerUser {
		want := rollout.RegionNA
		if a.UserID == "u-cohort" {
			want = rollout.RegionEU
		}
		if a.Region != want {
			t.Errorf("region(%s) = %q, want %q", a.UserID, a.Region, want)
		}
	}
}

func TestEngineRunDrift(t *testing.T) {
	report := testEngine().Run(fixtureSnapshot(), testRelease, testVersion, testutil.Date(2025, time.June, 4))

	// u-cohort resolves to grp-B but the audit trail says grp-A.
	if len(report.Drift) != 1 {
		t.Fatalf("Drift = %v, want exactly one entry", report.Drift)
	}
	d := report.Drift[0]
	if d.UserID != "u-cohort" || d.ResolvedPhase != "grp-B" || d.AuditedPhase != "grp-A" {
		t.Errorf("Drift[0] = %+v", d)
	}

	if len(report.NoRecentAudit) != 1 || report.NoRecentAudit[0] != "u-unassigned" {
		t.Errorf("NoRecentAudit = %v, want [u-unassigned]", report.NoRecentAudit)
	}
}

func TestEngineRunSummary(t *testing.T) {
	report := testEngine().Run(fixtureSnapshot(), testRelease, testVersion, testutil.Date(2025, time.June, 4))

	s := report.Summary
	if s.Total != len(report.PerUser) {
		t.Errorf("Summary.Total = %d, want %d", s.Total, len(report.PerUser))
	}
	sum := 0
	for _, n := range s.ByPhase {
		sum += n
	}
	if sum != s.Total {
		t.Errorf("sum(ByPhase) = %d, want %d", sum, s.Total)
	}
	if s.Verified+s.Unverified != s.Total {
		t.Errorf("Verified+Unverified = %d, want %d", s.Verified+s.Unverified, s.Total)
	}
	if s.Verified != 4 {
		t.Errorf("Verified = %d, want 4", s.Verified)
	}
}

func TestEngineRunAmbiguousCohort(t *testing.T) {
	snap := fixtureSnapshot()
	snap.Groups = append(snap.Groups, rollout.CohortGroup{
		Name: "grp-C", Release: testRelease, Version: testVersion, UserIDs: []string{"u-cohort"},
	})

	report := testEngine().Run(snap, testRelease, testVersion, testutil.Date(2025, time.June, 4))

	if got := phaseOf(t, report, "u-cohort"); got != rollout.PhaseAmbiguousCohort {
		t.Errorf("phase(u-cohort) = %q, want %q", got, rollout.PhaseAmbiguousCohort)
	}
	if len(report.Errors) != 1 || report.Errors[0].UserID != "u-cohort" || report.Errors[0].Reason != rollout.ReasonAmbiguousCohort {
		t.Errorf("Errors = %v, want one ambiguous-cohort entry for u-cohort", report.Errors)
	}
	// Ambiguous users are excluded from reconciliation.
	for _, d := range report.Drift {
		if d.UserID == "u-cohort" {
			t.Error("ambiguous user appeared in drift report")
		}
	}
	// But they still count in the summary under the sentinel label.
	if report.Summary.ByPhase[rollout.PhaseAmbiguousCohort] != 1 {
		t.Errorf("ByPhase[ambiguous] = %d, want 1", report.Summary.ByPhase[rollout.PhaseAmbiguousCohort])
	}
}

func TestEngineRunDeterministic(t *testing.T) {
	cutoff := testutil.Date(2025, time.June, 4)

	first := testEngine(WithWorkers(4)).Run(fixtureSnapshot(), testRelease, testVersion, cutoff)
	for i := 0; i < 5; i++ {
		again := testEngine(WithWorkers(4)).Run(fixtureSnapshot(), testRelease, testVersion, cutoff)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first run", i)
		}
	}

	// Serial and parallel execution agree.
	serial := testEngine(WithWorkers(1)).Run(fixtureSnapshot(), testRelease, testVersion, cutoff)
	if !reflect.DeepEqual(first, serial) {
		t.Error("parallel run differs from serial run")
	}
}

func TestEngineRunEmptySnapshot(t *testing.T) {
	report := testEngine().Run(BuildSnapshot(nil, nil, nil, nil), testRelease, testVersion, testutil.Date(2025, time.June, 4))

	if len(report.PerUser) != 0 || len(report.Drift) != 0 || len(report.Errors) != 0 {
		t.Errorf("empty snapshot produced non-empty report: %+v", report)
	}
	if report.Summary.Total != 0 {
		t.Errorf("Summary.Total = %d, want 0", report.Summary.Total)
	}
	if report.Release != testRelease || report.Version != testVersion {
		t.Errorf("report scope = %s/%s, want %s/%s", report.Release, report.Version, testRelease, testVersion)
	}
}

func TestEngineRunScopeFiltering(t *testing.T) {
	// Cohorts for another release do not leak into this run.
	report := testEngine().Run(fixtureSnapshot(), "2025.6.0", testVersion, testutil.Date(2025, time.June, 4))

	if got := phaseOf(t, report, "u-cohort"); got != rollout.PhaseUnassigned {
		t.Errorf("phase(u-cohort) = %q under other release, want unassigned", got)
	}
}
