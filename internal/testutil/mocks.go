package testutil

import (
	"context"
	"time"

	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
)

// MockSource is an in-memory implementation of rollout.Source
type MockSource struct {
	Users    []rollout.User
	Licenses []rollout.License
	Groups   []rollout.CohortGroup
	Audits   []rollout.AuditRecord

	UsersErr    error
	LicensesErr error
	GroupsErr   error
	AuditsErr   error
	PingErr     error
}

// NewMockSource creates an empty mock source
func NewMockSource() *MockSource {
	return &MockSource{}
}

func (m *MockSource) LoadUsers(ctx context.Context) ([]rollout.User, error) {
	if m.UsersErr != nil {
		return nil, m.UsersErr
	}
	return m.Users, nil
}

func (m *MockSource) LoadLicenses(ctx context.Context) ([]rollout.License, error) {
	if m.LicensesErr != nil {
		return nil, m.LicensesErr
	}
	return m.Licenses, nil
}

func (m *MockSource) LoadCohortGroups(ctx context.Context, release, version string) ([]rollout.CohortGroup, error) {
	if m.GroupsErr != nil {
		return nil, m.GroupsErr
	}
	var out []rollout.CohortGroup
	for _, g := range m.Groups {
		if g.Release == release && g.Version == version {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *MockSource) LoadAuditRecords(ctx context.Context, cutoff time.Time) ([]rollout.AuditRecord, error) {
	if m.AuditsErr != nil {
		return nil, m.AuditsErr
	}
	return m.Audits, nil
}

func (m *MockSource) AuditTrail(ctx context.Context, userID string) ([]rollout.AuditRecord, error) {
	if m.AuditsErr != nil {
		return nil, m.AuditsErr
	}
	var out []rollout.AuditRecord
	for _, rec := range m.Audits {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MockSource) Ping(ctx context.Context) error {
	return m.PingErr
}
