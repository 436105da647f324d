package roles

import "testing"

func TestParseIsTotal(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{"admin", Admin},
		{"Admin", Admin},
		{"ADMIN", Admin},
		{" admin ", Admin},
		{"tenant", Tenant},
		{"Tenant", Tenant},
		{"user", User},
		{"", User},
		{"manager", User},
		{"admn", User}, // typo is not silently accepted as admin
		{"superadmin", User},
	}

	for _, tt := range tests {
		if got := Parse(tt.raw); got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		role Role
		path string
		want bool
	}{
		{Admin, "/dashboard", true},
		{Admin, "/dashboard/overview", true},
		{Admin, "/homeowner-dashboard", false},
		{Tenant, "/homeowner-dashboard", true},
		{Tenant, "/dashboard", false},
		{Tenant, "/payments", true},
		{Tenant, "/payments/history", true},
		{Tenant, "/payments-export", false}, // prefix must end at a segment boundary
		{User, "/homeowner-dashboard", true},
		{User, "/security", false},
		{Tenant, "/email-verification", true},
	}

	for _, tt := range tests {
		if got := Allowed(tt.role, tt.path); got != tt.want {
			t.Errorf("Allowed(%q, %q) = %v, want %v", tt.role, tt.path, got, tt.want)
		}
	}
}

func TestUserSharesTenantPages(t *testing.T) {
	tenantSet := PagePrefixes(Tenant)
	userSet := PagePrefixes(User)
	if len(tenantSet) != len(userSet) {
		t.Fatalf("tenant and user page tables differ in size: %d vs %d", len(tenantSet), len(userSet))
	}
	for i := range tenantSet {
		if tenantSet[i] != userSet[i] {
			t.Errorf("page table mismatch at %d: %q vs %q", i, tenantSet[i], userSet[i])
		}
	}
}

func TestLandingPageIsInOwnAllowedSet(t *testing.T) {
	for _, r := range []Role{Admin, Tenant, User} {
		if !Allowed(r, LandingPage(r)) {
			t.Errorf("landing page %q for role %q is not in its own allowed set", LandingPage(r), r)
		}
	}
}
