package resolver

import (
	"sort"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
)

// CohortIndex maps userID to cohort name for one (release, version) pair.
// It is built once per run and read-only afterwards, so the parallel
// classification phase can share it without locking.
type CohortIndex struct {
	release   string
	version   string
	byUser    map[string]string
	ambiguous map[string][]string
}

// BuildCohortIndex flattens cohort membership lists into an O(1) lookup.
// Groups scoped to a different (release, version) are ignored. A user listed
// under two different cohort names within the same scope is recorded as
// ambiguous at build time; Lookup never silently picks one.
func BuildCohortIndex(release, version string, groups []rollout.CohortGroup) *CohortIndex {
	ix := &CohortIndex{
		release:   release,
		version:   version,
		byUser:    make(map[string]string),
		ambiguous: make(map[string][]string),
	}

	for _, g := range groups {
		if g.Release != release || g.Version != version {
			continue
		}
		for _, uid := range g.UserIDs {
			if uid == "" {
				continue
			}
			if names, dup := ix.ambiguous[uid]; dup {
				ix.ambiguous[uid] = appendUnique(names, g.Name)
				continue
			}
			prev, seen := ix.byUser[uid]
			if !seen {
				ix.byUser[uid] = g.Name
				continue
			}
			if prev != g.Name {
				// Conflicting membership: move the user out of the lookup
				// and into the ambiguity set.
				delete(ix.byUser, uid)
				ix.ambiguous[uid] = []string{prev, g.Name}
			}
		}
	}

	for _, names := range ix.ambiguous {
		sort.Strings(names)
	}

	return ix
}

// Lookup returns the cohort name for a user, if unambiguously assigned.
func (ix *CohortIndex) Lookup(userID string) (string, bool) {
	name, ok := ix.byUser[userID]
	return name, ok
}

// Ambiguous returns the conflicting cohort names for a user, if any.
func (ix *CohortIndex) Ambiguous(userID string) ([]string, bool) {
	names, ok := ix.ambiguous[userID]
	return names, ok
}

// AmbiguousCount returns how many users have conflicting memberships.
func (ix *CohortIndex) AmbiguousCount() int {
	return len(ix.ambiguous)
}

func appendUnique(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}
