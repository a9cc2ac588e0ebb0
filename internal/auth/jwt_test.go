package auth

import (
	"testing"
	"time"
)

func TestMintAndParse(t *testing.T) {
	secret := "test-secret"

	token, err := MintAccessToken("svc-dashboard", "ops@example.com", secret, time.Hour)
	if err != nil {
		t.Fatalf("MintAccessToken() error = %v", err)
	}

	claims, err := ParseClaims(token, secret)
	if err != nil {
		t.Fatalf("ParseClaims() error = %v", err)
	}
	if claims.Subject != "svc-dashboard" {
		t.Errorf("Subject = %q, want svc-dashboard", claims.Subject)
	}
	if claims.Email != "ops@example.com" {
		t.Errorf("Email = %q, want ops@example.com", claims.Email)
	}
}

func TestParseClaimsRejectsBadTokens(t *testing.T) {
	secret := "test-secret"
	valid, _ := MintAccessToken("svc", "", secret, time.Hour)
	expired, _ := MintAccessToken("svc", "", secret, -time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", valid[:len(valid)-2] + "xx"},
		{"expired", expired},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseClaims(tt.token, secret); err == nil {
				t.Error("ParseClaims() error = nil, want rejection")
			}
		})
	}
}

func TestParseClaimsRejectsOtherSecret(t *testing.T) {
	token, _ := MintAccessToken("svc", "", "secret-a", time.Hour)
	if _, err := ParseClaims(token, "secret-b"); err == nil {
		t.Error("ParseClaims() accepted a token signed with another secret")
	}
}
