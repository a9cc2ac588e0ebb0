package resolver

import (
	"testing"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
)

func TestAggregate(t *testing.T) {
	assignments := []rollout.Assignment{
		{UserID: "u-1", Phase: "internal", Region: "NA", Verified: true},
		{UserID: "u-2", Phase: "internal", Region: "EU", Verified: true},
		{UserID: "u-3", Phase: "free", Region: "NA", Verified: false},
		{UserID: "u-4", Phase: "free", Region: "NA", Verified: true},
		{UserID: "u-5", Phase: "grp-A", Region: "EU", Verified: false},
	}

	summary := Aggregate(assignments)

	if summary.Total != 5 {
		t.Errorf("Total = %d, want 5", summary.Total)
	}
	if summary.Verified != 3 || summary.Unverified != 2 {
		t.Errorf("Verified/Unverified = %d/%d, want 3/2", summary.Verified, summary.Unverified)
	}

	wantByPhase := map[string]int{"internal": 2, "free": 2, "grp-A": 1}
	for phase, want := range wantByPhase {
		if got := summary.ByPhase[phase]; got != want {
			t.Errorf("ByPhase[%q] = %d, want %d", phase, got, want)
		}
	}

	// Phase counts always reconcile with the per-user total.
	sum := 0
	for _, n := range summary.ByPhase {
		sum += n
	}
	if sum != summary.Total {
		t.Errorf("sum(ByPhase) = %d, want Total %d", sum, summary.Total)
	}

	wantRegions := []rollout.PhaseRegionCount{
		{Phase: "free", Region: "NA", Count: 2},
		{Phase: "grp-A", Region: "EU", Count: 1},
		{Phase: "internal", Region: "EU", Count: 1},
		{Phase: "internal", Region: "NA", Count: 1},
	}
	if len(summary.ByPhaseRegion) != len(wantRegions) {
		t.Fatalf("ByPhaseRegion = %v, want %v", summary.ByPhaseRegion, wantRegions)
	}
	for i, want := range wantRegions {
		if summary.ByPhaseRegion[i] != want {
			t.Errorf("ByPhaseRegion[%d] = %+v, want %+v", i, summary.ByPhaseRegion[i], want)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	summary := Aggregate(nil)

	if summary.Total != 0 || summary.Verified != 0 || summary.Unverified != 0 {
		t.Errorf("Aggregate(nil) counts = %+v, want zeros", summary)
	}
	if len(summary.ByPhase) != 0 {
		t.Errorf("Aggregate(nil) ByPhase = %v, want empty", summary.ByPhase)
	}
	if len(summary.ByPhaseRegion) != 0 {
		t.Errorf("Aggregate(nil) ByPhaseRegion = %v, want empty", summary.ByPhaseRegion)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	a := []rollout.Assignment{
		{UserID: "u-1", Phase: "free", Region: "NA"},
		{UserID: "u-2", Phase: "grp-A", Region: "EU"},
		{UserID: "u-3", Phase: "free", Region: "EU"},
	}
	b := []rollout.Assignment{a[2], a[0], a[1]}

	sa, sb := Aggregate(a), Aggregate(b)

	if sa.Total != sb.Total {
		t.Errorf("Total differs: %d vs %d", sa.Total, sb.Total)
	}
	for phase, n := range sa.ByPhase {
		if sb.ByPhase[phase] != n {
			t.Errorf("ByPhase[%q] differs: %d vs %d", phase, n, sb.ByPhase[phase])
		}
	}
	for i := range sa.ByPhaseRegion {
		if sa.ByPhaseRegion[i] != sb.ByPhaseRegion[i] {
			t.Errorf("ByPhaseRegion[%d] differs: %+v vs %+v", i, sa.ByPhaseRegion[i], sb.ByPhaseRegion[i])
		}
	}
}
