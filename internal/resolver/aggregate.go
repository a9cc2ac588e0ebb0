package resolver

import (
	"sort"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
)

// Aggregate reduces per-user assignments into phase-count summaries. Counts
// are grouped, not concatenated, so the result is independent of input
// order; the (phase, region) breakdown is emitted sorted for stable output.
func Aggregate(assignments []rollout.Assignment) rollout.Summary {
	summary := rollout.Summary{
		ByPhase: make(map[string]int),
		Total:   len(assignments),
	}

	type key struct{ phase, region string }
	regionCounts := make(map[key]int)

	for _, a := range assignments {
		summary.ByPhase[a.Phase]++
		regionCounts[key{a.Phase, a.Region}]++
		if a.Verified {
			summary.Verified++
		} else {
			summary.Unverified++
		}
	}

	summary.ByPhaseRegion = make([]rollout.PhaseRegionCount, 0, len(regionCounts))
	for k, n := range regionCounts {
		summary.ByPhaseRegion = append(summary.ByPhaseRegion, rollout.PhaseRegionCount{
			Phase:  k.phase,
			Region: k.region,
			Count:  n,
		})
	}
	sort.Slice(summary.ByPhaseRegion, func(i, j int) bool {
		a, b := summary.ByPhaseRegion[i], summary.ByPhaseRegion[j]
		if a.Phase != b.Phase {
			return a.Phase < b.Phase
		}
		return a.Region < b.Region
	})

	return summary
}
