package resolver

import (
	"strings"
	"time"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
)

// Classification is the outcome of classifying one eligible user.
type Classification struct {
	Phase     string
	Ambiguous bool
	// Cohorts holds the conflicting cohort names when Ambiguous is set.
	Cohorts []string
}

// Classify assigns exactly one phase label to an eligible (user, license)
// pair. The rules are an ordered decision procedure; the first match wins:
//
//  1. internal operator domain -> internal
//  2. free tier with a future trial end -> free-trial
//  3. free tier -> free
//  4. cohort lookup -> cohort name, or unassigned when absent
//
// The order is load-bearing: internal staff are never canary subjects even
// when present in a cohort list, and free-trial outranks plain free. A user
// found in more than one cohort for the target scope is reported as
// ambiguous rather than being assigned to either.
func Classify(now time.Time, internalDomain string, u rollout.User, l rollout.License, ix *CohortIndex) Classification {
	if strings.EqualFold(u.EmailDomain, internalDomain) {
		return Classification{Phase: rollout.PhaseInternal}
	}

	tier := strings.ToLower(strings.TrimSpace(l.Tier))
	if tier == rollout.TierFree {
		if l.TrialEndDate != nil && l.TrialEndDate.After(now) {
			return Classification{Phase: rollout.PhaseFreeTrial}
		}
		return Classification{Phase: rollout.PhaseFree}
	}

	if names, dup := ix.Ambiguous(u.ID); dup {
		return Classification{
			Phase:     rollout.PhaseAmbiguousCohort,
			Ambiguous: true,
			Cohorts:   names,
		}
	}
	if name, ok := ix.Lookup(u.ID); ok {
		return Classification{Phase: name}
	}

	// Eligible and paying, but not yet placed in any rollout cohort.
	return Classification{Phase: rollout.PhaseUnassigned}
}
