package resolver

import (
	"strings"
	"time"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
)

// Eligible reports whether a (user, license) pair qualifies for phase
// resolution. The predicate is total: malformed tier or type values count as
// ineligible, they never raise.
//
// A pair is eligible iff the license type is in the allow-list, the tier is
// not "none", and the license is either free, non-expiring, or not yet
// expired.
func Eligible(now time.Time, allowedTypes map[string]struct{}, l rollout.License) bool {
	typ := strings.ToLower(strings.TrimSpace(l.Type))
	if _, ok := allowedTypes[typ]; !ok {
		return false
	}

	tier := strings.ToLower(strings.TrimSpace(l.Tier))
	if tier == "" || tier == rollout.TierNone {
		return false
	}

	// Free licenses stay eligible past expiry; paid tiers must be current.
	if tier == rollout.TierFree {
		return true
	}
	return l.Expires == nil || l.Expires.After(now)
}

// AllowedTypeSet builds the lookup set used by Eligible.
func AllowedTypeSet(types []string) map[string]struct{} {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return set
}
