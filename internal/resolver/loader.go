package resolver

import (
	"fmt"
	"strings"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
)

// Snapshot is the validated, typed view of one run's input data. It is built
// once per run and read-only afterwards.
type Snapshot struct {
	Users    map[string]rollout.User
	Licenses map[string]rollout.License
	Groups   []rollout.CohortGroup
	Audits   []rollout.AuditRecord
	Warnings []string
}

// BuildSnapshot normalizes raw collections into keyed lookups. Records that
// cannot be tied to a user (orphan licenses, cohort entries with no members)
// are dropped with a recorded warning; they never abort the run because the
// source data is externally produced.
func BuildSnapshot(users []rollout.User, licenses []rollout.License, groups []rollout.CohortGroup, audits []rollout.AuditRecord) *Snapshot {
	snap := &Snapshot{
		Users:    make(map[string]rollout.User, len(users)),
		Licenses: make(map[string]rollout.License, len(licenses)),
	}

	for _, u := range users {
		if u.ID == "" {
			snap.warn("user with empty id dropped (email=%q)", u.Email)
			continue
		}
		if u.EmailDomain == "" {
			u.EmailDomain = emailDomain(u.Email)
		}
		snap.Users[u.ID] = u
	}

	for _, l := range licenses {
		if _, ok := snap.Users[l.UserID]; !ok {
			snap.warn("license for unknown user %q dropped", l.UserID)
			continue
		}
		snap.Licenses[l.UserID] = l
	}

	for _, g := range groups {
		if len(g.UserIDs) == 0 {
			snap.warn("cohort %q (%s/%s) has no members, dropped", g.Name, g.Release, g.Version)
			continue
		}
		snap.Groups = append(snap.Groups, g)
	}

	snap.Audits = make([]rollout.AuditRecord, 0, len(audits))
	for i, rec := range audits {
		if rec.Seq == 0 {
			rec.Seq = int64(i) + 1
		}
		snap.Audits = append(snap.Audits, rec)
	}

	return snap
}

func (s *Snapshot) warn(format string, args ...interface{}) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// emailDomain extracts the part after the last "@". Empty when the address
// has no domain part.
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}
