package roles

import "strings"

// Role is the closed set of portal roles. Raw role strings from sessions or
// the users table pass through Parse, which is total: every input, including
// empty and unrecognized values, maps to exactly one variant.
type Role string

const (
	Admin  Role = "admin"
	Tenant Role = "tenant"
	// User is the least-privileged fallback. It is never assigned by any
	// code path; it only absorbs missing or unrecognized role values and
	// carries the same page access as Tenant.
	User Role = "user"
)

// Parse maps a raw role value to a Role. Matching is case-insensitive;
// anything unrecognized becomes User.
func Parse(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin":
		return Admin
	case "tenant":
		return Tenant
	default:
		return User
	}
}

// IsAdmin reports whether a raw role value resolves to Admin.
func IsAdmin(raw string) bool {
	return Parse(raw) == Admin
}

var adminPages = []string{
	"/dashboard",
	"/properties",
	"/applications",
	"/payments",
	"/service-requests",
	"/announcements",
	"/security",
	"/settings",
	"/profile",
	"/email-verification",
}

var tenantPages = []string{
	"/homeowner-dashboard",
	"/applications",
	"/payments",
	"/service-requests",
	"/announcements",
	"/profile",
	"/email-verification",
}

// PagePrefixes returns the path prefixes a role may access. The table is
// static; an unknown role gets the least-privileged (User) table.
func PagePrefixes(r Role) []string {
	switch r {
	case Admin:
		return adminPages
	case Tenant, User:
		return tenantPages
	default:
		return tenantPages
	}
}

// LandingPage returns the default page a role is sent to when it requests a
// path outside its allowed set, or a login/signup page while authenticated.
func LandingPage(r Role) string {
	if r == Admin {
		return "/dashboard"
	}
	return "/homeowner-dashboard"
}

// Allowed reports whether path falls under one of the role's page prefixes.
// A prefix matches on exact equality or as a path-segment boundary, so
// "/payments" covers "/payments/history" but not "/payments-export".
func Allowed(r Role, path string) bool {
	for _, prefix := range PagePrefixes(r) {
		if matchesPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func matchesPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
