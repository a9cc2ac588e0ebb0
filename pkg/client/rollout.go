package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// RolloutService handles rollout resolution API calls
type RolloutService struct {
	client *Client
}

// ResolveParams holds the optional query parameters for resolution calls.
// Zero values fall back to the server-side defaults.
type ResolveParams struct {
	Release string // Release name (e.g., "2025.5.1")
	Version string // Rollout version (e.g., "1.0")
	Cutoff  string // Audit cutoff date, YYYY-MM-DD
}

func (p ResolveParams) encode() string {
	q := url.Values{}
	if p.Release != "" {
		q.Set("release", p.Release)
	}
	if p.Version != "" {
		q.Set("version", p.Version)
	}
	if p.Cutoff != "" {
		q.Set("cutoff", p.Cutoff)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Phases returns the full resolution report with per-user assignments
func (s *RolloutService) Phases(ctx context.Context, params ResolveParams) (*Report, error) {
	var report Report
	path := "/api/v1/rollout/phases" + params.encode()
	if err := s.client.doRequest(ctx, http.MethodGet, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Summary returns the aggregated phase distribution
func (s *RolloutService) Summary(ctx context.Context, params ResolveParams) (*Summary, error) {
	var summary Summary
	path := "/api/v1/rollout/summary" + params.encode()
	if err := s.client.doRequest(ctx, http.MethodGet, path, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Drift returns users whose audited phase disagrees with the resolved phase
func (s *RolloutService) Drift(ctx context.Context, params ResolveParams) (*DriftReport, error) {
	var drift DriftReport
	path := "/api/v1/rollout/drift" + params.encode()
	if err := s.client.doRequest(ctx, http.MethodGet, path, nil, &drift); err != nil {
		return nil, err
	}
	return &drift, nil
}

// UserAudit returns the full audit trail for a single user
func (s *RolloutService) UserAudit(ctx context.Context, userID string) ([]AuditRecord, error) {
	var records []AuditRecord
	path := fmt.Sprintf("/api/v1/rollout/users/%s/audit", url.PathEscape(userID))
	if err := s.client.doRequest(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}
