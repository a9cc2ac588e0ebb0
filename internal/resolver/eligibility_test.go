package resolver

import (
	"testing"
	"time"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
	"github.com/sanjeevceligo/rollout-insights/internal/testutil"
)

func TestEligible(t *testing.T) {
	now := testutil.Date(2025, time.June, 10)
	allowed := AllowedTypeSet([]string{"integrator", "endpoint", "platform", "diy"})

	tests := []struct {
		name    string
		license rollout.License
		want    bool
	}{
		{
			name:    "paid tier with future expiry",
			license: rollout.License{Tier: "premium", Type: "platform", Expires: testutil.TimePtr(testutil.Date(2026, time.January, 1))},
			want:    true,
		},
		{
			name:    "paid tier with no expiry",
			license: rollout.License{Tier: "premium", Type: "integrator"},
			want:    true,
		},
		{
			name:    "paid tier expired",
			license: rollout.License{Tier: "premium", Type: "platform", Expires: testutil.TimePtr(testutil.Date(2025, time.January, 1))},
			want:    false,
		},
		{
			name:    "free tier stays eligible past expiry",
			license: rollout.License{Tier: "free", Type: "endpoint", Expires: testutil.TimePtr(testutil.Date(2024, time.January, 1))},
			want:    true,
		},
		{
			name:    "tier none never eligible",
			license: rollout.License{Tier: "none", Type: "platform"},
			want:    false,
		},
		{
			name:    "tier none with valid expiry still ineligible",
			license: rollout.License{Tier: "none", Type: "platform", Expires: testutil.TimePtr(testutil.Date(2026, time.January, 1))},
			want:    false,
		},
		{
			name:    "empty tier ineligible",
			license: rollout.License{Tier: "", Type: "platform"},
			want:    false,
		},
		{
			name:    "type outside allow-list",
			license: rollout.License{Tier: "premium", Type: "partner"},
			want:    false,
		},
		{
			name:    "empty type",
			license: rollout.License{Tier: "premium", Type: ""},
			want:    false,
		},
		{
			name:    "type matching is case-insensitive",
			license: rollout.License{Tier: "premium", Type: "Platform"},
			want:    true,
		},
		{
			name:    "type with surrounding whitespace",
			license: rollout.License{Tier: "premium", Type: " diy "},
			want:    true,
		},
		{
			name:    "tier matching is case-insensitive",
			license: rollout.License{Tier: "NONE", Type: "platform"},
			want:    false,
		},
		{
			name:    "expiry exactly at now is expired",
			license: rollout.License{Tier: "premium", Type: "platform", Expires: testutil.TimePtr(now)},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eligible(now, allowed, tt.license); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllowedTypeSet(t *testing.T) {
	set := AllowedTypeSet([]string{"Platform", " diy "})

	if _, ok := set["platform"]; !ok {
		t.Error("AllowedTypeSet() did not lowercase entries")
	}
	if _, ok := set["diy"]; !ok {
		t.Error("AllowedTypeSet() did not trim entries")
	}
	if len(set) != 2 {
		t.Errorf("AllowedTypeSet() size = %d, want 2", len(set))
	}
}
