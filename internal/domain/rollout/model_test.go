package rollout

import "testing"

func TestUserRegion(t *testing.T) {
	tests := []struct {
		name      string
		subdomain string
		want      string
	}{
		{"no subdomain is primary region", "", RegionNA},
		{"subdomain means secondary region", "eu1", RegionEU},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{ID: "u-1", Subdomain: tt.subdomain}
			if got := u.Region(); got != tt.want {
				t.Errorf("Region() = %q, want %q", got, tt.want)
			}
		})
	}
}
