package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"dwellport-backend/shared/config"
)

// InitSentry starts error reporting when a DSN is configured. Without a DSN
// the returned middleware still recovers panics, it just has nowhere to
// report them.
func InitSentry(serviceName string) gin.HandlerFunc {
	cfg := config.GetConfig()

	if cfg.SentryDSN == "" {
		log.Println("Sentry DSN not configured, error reporting disabled")
	} else {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			ServerName:       serviceName,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️ Sentry initialization failed: %v", err)
		} else {
			log.Printf("✅ Sentry error reporting enabled for %s", serviceName)
		}
	}

	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				sentry.WithScope(func(scope *sentry.Scope) {
					scope.SetExtra("panic", rec)
					scope.SetExtra("path", c.Request.URL.Path)
					scope.SetExtra("stack", string(debug.Stack()))
					sentry.CaptureMessage("panic in request")
				})

				log.Printf("⚠️ Panic recovered on %s %s: %v", c.Request.Method, c.Request.URL.Path, rec)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()

		c.Next()
	}
}

// FlushSentry drains pending events, called on shutdown.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
