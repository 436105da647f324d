package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dwellport-backend/api-gateway/gate"
	"dwellport-backend/api-gateway/session"
	"dwellport-backend/shared/config"
)

// AccessGateMiddleware applies the routing gate to every page request: it
// reads the session cookie, resolves it, and either lets the request
// continue or issues the gate's redirect. API and asset paths pass straight
// through inside gate.Decide.
func AccessGateMiddleware(resolver *session.Resolver) gin.HandlerFunc {
	cfg := config.GetConfig()

	return func(c *gin.Context) {
		var sess *gate.Session
		var lookupErr error

		token, err := c.Cookie(cfg.SessionCookieName)
		if err == nil && token != "" {
			sess, lookupErr = resolver.Resolve(c.Request.Context(), token)
		}

		decision := gate.Decide(c.Request.URL.Path, sess, lookupErr)
		if !decision.Allow {
			c.Redirect(http.StatusFound, decision.RedirectTo)
			c.Abort()
			return
		}

		if sess != nil {
			c.Set("user_id", sess.UserID)
			c.Set("user_email", sess.Email)
			c.Set("user_role", sess.Role)
		}

		c.Next()
	}
}
