package gate

import (
	"errors"
	"testing"
)

func verified(role string) *Session {
	return &Session{UserID: "u-1", Email: "u@example.com", Role: role, EmailVerified: true}
}

func unverified(role string) *Session {
	s := verified(role)
	s.EmailVerified = false
	return s
}

func TestDecide(t *testing.T) {
	lookupFailure := errors.New("session service timeout")

	tests := []struct {
		name     string
		path     string
		sess     *Session
		err      error
		allow    bool
		redirect string
	}{
		{"public root without session", "/", nil, nil, true, ""},
		{"public page without session", "/about", nil, nil, true, ""},
		{"protected page without session", "/dashboard", nil, nil, false, "/login?redirect=/dashboard"},
		{"tenant requesting admin page", "/dashboard", verified("tenant"), nil, false, "/homeowner-dashboard"},
		{"tenant on own landing, unverified", "/homeowner-dashboard", unverified("tenant"), nil, false, "/email-verification"},
		{"authenticated admin on login page", "/login", verified("admin"), nil, false, "/dashboard"},

		{"admin landing allowed", "/dashboard", verified("admin"), nil, true, ""},
		{"tenant landing allowed", "/homeowner-dashboard", verified("tenant"), nil, true, ""},
		{"tenant subpage allowed", "/service-requests/42", verified("tenant"), nil, true, ""},
		{"unknown role falls back to least privilege", "/homeowner-dashboard", verified("manager"), nil, true, ""},
		{"unknown role denied admin page", "/security", verified("manager"), nil, false, "/homeowner-dashboard"},
		{"missing role falls back to least privilege", "/homeowner-dashboard", verified(""), nil, true, ""},

		{"unverified session on verification page", "/email-verification", unverified("tenant"), nil, true, ""},
		{"unverified session on any other page", "/payments", unverified("tenant"), nil, false, "/email-verification"},

		{"login page without session", "/login", nil, nil, true, ""},
		{"signup page without session", "/signup", nil, nil, true, ""},
		{"authenticated tenant on signup page", "/signup", verified("tenant"), nil, false, "/homeowner-dashboard"},

		{"api namespace bypassed", "/api/payments", nil, nil, true, ""},
		{"static asset bypassed", "/static/logo.svg", nil, nil, true, ""},
		{"file extension bypassed", "/favicon.ico", nil, nil, true, ""},

		// Lookup failure: closed for protected paths, open for public ones.
		{"lookup failure on protected path", "/dashboard", nil, lookupFailure, false, "/login?redirect=/dashboard"},
		{"lookup failure on public path", "/", nil, lookupFailure, true, ""},
		{"lookup failure on public prefix", "/listings/12", nil, lookupFailure, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.path, tt.sess, tt.err)
			if d.Allow != tt.allow {
				t.Errorf("Allow = %v, want %v", d.Allow, tt.allow)
			}
			if d.RedirectTo != tt.redirect {
				t.Errorf("RedirectTo = %q, want %q", d.RedirectTo, tt.redirect)
			}
		})
	}
}

func TestDecisionIsTerminal(t *testing.T) {
	// A decision either allows or redirects, never both, never neither for
	// a resolvable case.
	d := Decide("/dashboard", verified("admin"), nil)
	if !d.Allow || d.RedirectTo != "" {
		t.Errorf("allow decision should carry no redirect: %+v", d)
	}
	d = Decide("/dashboard", nil, nil)
	if d.Allow || d.RedirectTo == "" {
		t.Errorf("redirect decision should carry a target: %+v", d)
	}
}
