package resolver

import (
	"sort"
	"time"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
)

// LatestAudit selects, per user, the single most recent audit record with
// Time at or after the cutoff. A timestamp tie is broken by the higher Seq
// (later insertion), which keeps the selection deterministic regardless of
// input order.
func LatestAudit(records []rollout.AuditRecord, cutoff time.Time) map[string]rollout.AuditRecord {
	latest := make(map[string]rollout.AuditRecord)
	for _, rec := range records {
		if rec.Time.Before(cutoff) {
			continue
		}
		cur, ok := latest[rec.UserID]
		if !ok || rec.Time.After(cur.Time) || (rec.Time.Equal(cur.Time) && rec.Seq > cur.Seq) {
			latest[rec.UserID] = rec
		}
	}
	return latest
}

// Reconcile compares computed phases against the latest audit selection.
// Users whose labels differ become drift entries; users with no recent
// record land in the no-recent-audit list, which is an observability signal,
// not an error. Users flagged as ambiguous are skipped, their state is
// already surfaced through the errors channel.
func Reconcile(assignments []rollout.Assignment, latest map[string]rollout.AuditRecord) ([]rollout.DriftEntry, []string) {
	var drift []rollout.DriftEntry
	var noAudit []string

	for _, a := range assignments {
		if a.Phase == rollout.PhaseAmbiguousCohort {
			continue
		}
		rec, ok := latest[a.UserID]
		if !ok {
			noAudit = append(noAudit, a.UserID)
			continue
		}
		if rec.Phase != a.Phase {
			drift = append(drift, rollout.DriftEntry{
				UserID:        a.UserID,
				ResolvedPhase: a.Phase,
				AuditedPhase:  rec.Phase,
				AuditTime:     rec.Time,
			})
		}
	}

	sort.Slice(drift, func(i, j int) bool { return drift[i].UserID < drift[j].UserID })
	sort.Strings(noAudit)
	return drift, noAudit
}
