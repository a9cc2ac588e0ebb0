package resolver

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
)

// Engine performs one synchronous, single-pass resolution run over a
// snapshot. It holds no mutable state between runs; every Run recomputes
// phases from scratch so the output is always consistent with the snapshot.
type Engine struct {
	internalDomain string
	allowedTypes   map[string]struct{}
	workers        int
	now            func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of goroutines used for the classification
// fan-out. Values below 1 fall back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine for the given internal operator domain and
// license type allow-list.
func NewEngine(internalDomain string, licenseTypes []string, opts ...Option) *Engine {
	e := &Engine{
		internalDomain: internalDomain,
		allowedTypes:   AllowedTypeSet(licenseTypes),
		workers:        runtime.GOMAXPROCS(0),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type pair struct {
	user    rollout.User
	license rollout.License
}

// Run resolves phases for every eligible user in the snapshot against one
// (release, version) target and reconciles the result with the audit trail.
// Per-user classification is independent, so it is fanned out over a worker
// pool; the cohort index is built before the fan-out and read-only during it.
func (e *Engine) Run(snap *Snapshot, release, version string, cutoff time.Time) *rollout.Report {
	now := e.now()

	pairs := make([]pair, 0, len(snap.Licenses))
	for uid, lic := range snap.Licenses {
		u, ok := snap.Users[uid]
		if !ok {
			continue
		}
		if Eligible(now, e.allowedTypes, lic) {
			pairs = append(pairs, pair{user: u, license: lic})
		}
	}
	// Stable fan-out order; map iteration above is not deterministic.
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].user.ID < pairs[j].user.ID })

	index := BuildCohortIndex(release, version, snap.Groups)

	results := make([]Classification, len(pairs))
	workers := e.workers
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if workers > 1 {
		var wg sync.WaitGroup
		chunk := (len(pairs) + workers - 1) / workers
		for start := 0; start < len(pairs); start += chunk {
			end := start + chunk
			if end > len(pairs) {
				end = len(pairs)
			}
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				for i := lo; i < hi; i++ {
					results[i] = Classify(now, e.internalDomain, pairs[i].user, pairs[i].license, index)
				}
			}(start, end)
		}
		wg.Wait()
	} else {
		for i := range pairs {
			results[i] = Classify(now, e.internalDomain, pairs[i].user, pairs[i].license, index)
		}
	}

	assignments := make([]rollout.Assignment, 0, len(pairs))
	var userErrors []rollout.UserError
	for i, p := range pairs {
		assignments = append(assignments, rollout.Assignment{
			UserID:   p.user.ID,
			Email:    p.user.Email,
			Phase:    results[i].Phase,
			Region:   p.user.Region(),
			Tier:     p.license.Tier,
			Verified: p.user.Verified,
		})
		if results[i].Ambiguous {
			userErrors = append(userErrors, rollout.UserError{
				UserID: p.user.ID,
				Reason: rollout.ReasonAmbiguousCohort,
			})
		}
	}

	latest := LatestAudit(snap.Audits, cutoff)
	drift, noAudit := Reconcile(assignments, latest)

	return &rollout.Report{
		Release:       release,
		Version:       version,
		Cutoff:        cutoff,
		PerUser:       assignments,
		Summary:       Aggregate(assignments),
		Drift:         drift,
		NoRecentAudit: noAudit,
		Errors:        userErrors,
		Warnings:      snap.Warnings,
		GeneratedAt:   now,
	}
}
