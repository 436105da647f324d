// Package gate classifies every inbound portal request before any business
// logic runs: public, authenticated-allowed, authenticated-denied or
// unauthenticated, each mapped to a terminal routing decision.
package gate

import (
	"path"
	"strings"

	"dwellport-backend/shared/roles"
)

// VerificationPath is where unverified sessions are parked.
const VerificationPath = "/email-verification"

// LoginPath receives unauthenticated requests for protected pages, carrying
// the originally requested path as the return destination.
const LoginPath = "/login"

// Session is the externally-owned identity the gate reads per request. The
// gate never writes it.
type Session struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}

// Decision is the terminal outcome for one request.
type Decision struct {
	Allow      bool
	RedirectTo string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(to string) Decision {
	return Decision{RedirectTo: to}
}

// publicPaths need no session at all. The root path matches exactly; the
// rest match as prefixes.
var publicPaths = []string{
	"/",
	"/about",
	"/contact",
	"/listings",
}

// authEntryPaths are reachable without a session but bounce authenticated
// users to their role's landing page.
var authEntryPaths = []string{
	"/login",
	"/signup",
	"/forgot-password",
	"/reset-password",
}

// Decide runs the per-request state machine. sess is nil when no session
// resolved; lookupErr is non-nil when the session lookup itself failed, in
// which case the gate fails closed for protected paths and open for public
// ones.
func Decide(requestPath string, sess *Session, lookupErr error) Decision {
	if isPublic(requestPath) {
		return allow()
	}

	// The API and static-asset namespaces carry their own authorization.
	if isBypassed(requestPath) {
		return allow()
	}

	if lookupErr != nil || sess == nil {
		if isAuthEntry(requestPath) {
			return allow()
		}
		return redirect(LoginPath + "?redirect=" + requestPath)
	}

	if !sess.EmailVerified && requestPath != VerificationPath {
		return redirect(VerificationPath)
	}

	role := roles.Parse(sess.Role)

	if isAuthEntry(requestPath) {
		return redirect(roles.LandingPage(role))
	}

	if !roles.Allowed(role, requestPath) {
		landing := roles.LandingPage(role)
		if !roles.Allowed(role, landing) {
			// Misconfigured landing page; letting the request through beats
			// a redirect loop.
			return allow()
		}
		return redirect(landing)
	}

	return allow()
}

func isPublic(requestPath string) bool {
	if requestPath == "/" {
		return true
	}
	for _, p := range publicPaths[1:] {
		if requestPath == p || strings.HasPrefix(requestPath, p+"/") {
			return true
		}
	}
	return false
}

func isAuthEntry(requestPath string) bool {
	for _, p := range authEntryPaths {
		if requestPath == p || strings.HasPrefix(requestPath, p+"/") {
			return true
		}
	}
	return false
}

func isBypassed(requestPath string) bool {
	if requestPath == "/api" || strings.HasPrefix(requestPath, "/api/") {
		return true
	}
	if strings.HasPrefix(requestPath, "/static/") || strings.HasPrefix(requestPath, "/assets/") {
		return true
	}
	// Anything with a file extension is a static asset request.
	return path.Ext(requestPath) != ""
}
