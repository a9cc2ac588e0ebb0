package resolver

import (
	"testing"
	"time"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
	"github.com/sanjeevceligo/rollout-insights/internal/testutil"
)

func TestClassify(t *testing.T) {
	now := testutil.Date(2025, time.June, 10)

	index := BuildCohortIndex("2025.5.1", "1.0", []rollout.CohortGroup{
		{Name: "grp-A", Release: "2025.5.1", Version: "1.0", UserIDs: []string{"u-cohort", "u-internal"}},
		{Name: "grp-B", Release: "2025.5.1", Version: "1.0", UserIDs: []string{"u-dup"}},
		{Name: "grp-C", Release: "2025.5.1", Version: "1.0", UserIDs: []string{"u-dup"}},
	})

	tests := []struct {
		name    string
		user    rollout.User
		license rollout.License
		want    string
	}{
		{
			name:    "internal domain wins over cohort membership",
			user:    rollout.User{ID: "u-internal", EmailDomain: "celigo.com"},
			license: rollout.License{Tier: "premium", Type: "platform"},
			want:    rollout.PhaseInternal,
		},
		{
			name:    "internal domain check is case-insensitive",
			user:    rollout.User{ID: "u-x", EmailDomain: "Celigo.COM"},
			license: rollout.License{Tier: "premium", Type: "platform"},
			want:    rollout.PhaseInternal,
		},
		{
			name:    "free tier with future trial end",
			user:    rollout.User{ID: "u-trial", EmailDomain: "example.com"},
			license: rollout.License{Tier: "free", Type: "endpoint", TrialEndDate: testutil.TimePtr(testutil.Date(2025, time.July, 1))},
			want:    rollout.PhaseFreeTrial,
		},
		{
			name:    "free tier with past trial end",
			user:    rollout.User{ID: "u-free", EmailDomain: "example.com"},
			license: rollout.License{Tier: "free", Type: "endpoint", TrialEndDate: testutil.TimePtr(testutil.Date(2025, time.May, 1))},
			want:    rollout.PhaseFree,
		},
		{
			name:    "free tier with no trial end",
			user:    rollout.User{ID: "u-free2", EmailDomain: "example.com"},
			license: rollout.License{Tier: "free", Type: "endpoint"},
			want:    rollout.PhaseFree,
		},
		{
			name:    "free tier trial end exactly at now is not a trial",
			user:    rollout.User{ID: "u-edge", EmailDomain: "example.com"},
			license: rollout.License{Tier: "free", Type: "endpoint", TrialEndDate: testutil.TimePtr(now)},
			want:    rollout.PhaseFree,
		},
		{
			name:    "free tier never reaches cohort lookup",
			user:    rollout.User{ID: "u-cohort", EmailDomain: "example.com"},
			license: rollout.License{Tier: "free", Type: "endpoint"},
			want:    rollout.PhaseFree,
		},
		{
			name:    "paid tier in cohort gets cohort name",
			user:    rollout.User{ID: "u-cohort", EmailDomain: "example.com"},
			license: rollout.License{Tier: "premium", Type: "platform"},
			want:    "grp-A",
		},
		{
			name:    "paid tier without cohort is unassigned",
			user:    rollout.User{ID: "u-nocohort", EmailDomain: "example.com"},
			license: rollout.License{Tier: "premium", Type: "platform"},
			want:    rollout.PhaseUnassigned,
		},
		{
			name:    "conflicting cohort membership is flagged",
			user:    rollout.User{ID: "u-dup", EmailDomain: "example.com"},
			license: rollout.License{Tier: "premium", Type: "platform"},
			want:    rollout.PhaseAmbiguousCohort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(now, "celigo.com", tt.user, tt.license, index)
			if got.Phase != tt.want {
				t.Errorf("Classify() phase = %q, want %q", got.Phase, tt.want)
			}
			if wantAmbiguous := tt.want == rollout.PhaseAmbiguousCohort; got.Ambiguous != wantAmbiguous {
				t.Errorf("Classify() ambiguous = %v, want %v", got.Ambiguous, wantAmbiguous)
			}
		})
	}
}

func TestClassifyAmbiguousCohortNames(t *testing.T) {
	index := BuildCohortIndex("2025.5.1", "1.0", []rollout.CohortGroup{
		{Name: "grp-B", Release: "2025.5.1", Version: "1.0", UserIDs: []string{"u-dup"}},
		{Name: "grp-A", Release: "2025.5.1", Version: "1.0", UserIDs: []string{"u-dup"}},
	})

	got := Classify(testutil.Date(2025, time.June, 10), "celigo.com",
		rollout.User{ID: "u-dup", EmailDomain: "example.com"},
		rollout.License{Tier: "premium", Type: "platform"}, index)

	if !got.Ambiguous {
		t.Fatal("Classify() expected ambiguous result")
	}
	if len(got.Cohorts) != 2 || got.Cohorts[0] != "grp-A" || got.Cohorts[1] != "grp-B" {
		t.Errorf("Classify() cohorts = %v, want sorted [grp-A grp-B]", got.Cohorts)
	}
}

// Exactly one phase per user: every rule combination lands on a single label.
func TestClassifyExactlyOnePhase(t *testing.T) {
	now := testutil.Date(2025, time.June, 10)
	index := BuildCohortIndex("2025.5.1", "1.0", []rollout.CohortGroup{
		{Name: "grp-A", Release: "2025.5.1", Version: "1.0", UserIDs: []string{"u-1"}},
	})

	users := []rollout.User{
		{ID: "u-1", EmailDomain: "celigo.com"},
		{ID: "u-1", EmailDomain: "example.com"},
		{ID: "u-2", EmailDomain: "example.com"},
	}
	licenses := []rollout.License{
		{Tier: "free", Type: "endpoint"},
		{Tier: "free", Type: "endpoint", TrialEndDate: testutil.TimePtr(testutil.Date(2025, time.July, 1))},
		{Tier: "premium", Type: "platform"},
	}

	for _, u := range users {
		for _, l := range licenses {
			got := Classify(now, "celigo.com", u, l, index)
			if got.Phase == "" {
				t.Errorf("Classify(%s, tier=%s) returned empty phase", u.ID, l.Tier)
			}
		}
	}
}
