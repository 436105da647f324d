package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"dwellport-backend/shared/config"
)

// attemptWindow tracks one client's attempts inside the current window.
type attemptWindow struct {
	Count      int
	ResetAt    time.Time
	LastAccess time.Time
	Blocked    bool
	BlockUntil time.Time
}

// LoginLimiter throttles the authentication endpoints per client IP. It sits
// in front of the lockout guard: the limiter slows brute force from one
// address, the guard locks the targeted account regardless of source.
type LoginLimiter struct {
	store       map[string]*attemptWindow
	mutex       sync.Mutex
	cleanupTime time.Duration

	maxAttempts   int
	timeWindow    time.Duration
	blockDuration time.Duration
}

// NewLoginLimiter reads limits from configuration and starts the cleanup
// goroutine.
func NewLoginLimiter(cleanupTime time.Duration) *LoginLimiter {
	cfg := config.GetConfig()

	limiter := &LoginLimiter{
		store:         make(map[string]*attemptWindow),
		cleanupTime:   cleanupTime,
		maxAttempts:   cfg.LoginRateLimitMaxAttempts,
		timeWindow:    time.Duration(cfg.LoginRateLimitWindowSeconds) * time.Second,
		blockDuration: time.Duration(cfg.LoginRateLimitBlockMinutes) * time.Minute,
	}

	go limiter.cleanup()

	return limiter
}

func (rl *LoginLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupTime)
	defer ticker.Stop()

	for range ticker.C {
		rl.mutex.Lock()
		now := time.Now()
		for key, window := range rl.store {
			if now.Sub(window.LastAccess) > 24*time.Hour {
				delete(rl.store, key)
			}
		}
		rl.mutex.Unlock()
	}
}

func (rl *LoginLimiter) isAllowed(key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	window, exists := rl.store[key]

	if !exists {
		rl.store[key] = &attemptWindow{
			Count:      1,
			ResetAt:    now.Add(rl.timeWindow),
			LastAccess: now,
		}
		return true
	}

	window.LastAccess = now

	if window.Blocked {
		if now.Before(window.BlockUntil) {
			return false
		}
		window.Blocked = false
		window.Count = 1
		window.ResetAt = now.Add(rl.timeWindow)
		return true
	}

	if now.After(window.ResetAt) {
		window.Count = 1
		window.ResetAt = now.Add(rl.timeWindow)
		return true
	}

	if window.Count >= rl.maxAttempts {
		window.Blocked = true
		window.BlockUntil = now.Add(rl.blockDuration)
		return false
	}

	window.Count++
	return true
}

func (rl *LoginLimiter) limit(prefix, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := prefix + c.ClientIP()

		if !rl.isAllowed(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Too many requests",
				"message": message,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// LoginRateLimitMiddleware throttles the login endpoint per IP.
func (rl *LoginLimiter) LoginRateLimitMiddleware() gin.HandlerFunc {
	return rl.limit("login:", "Too many login attempts. Please try again later.")
}

// RegistrationRateLimitMiddleware throttles the registration endpoint per IP.
func (rl *LoginLimiter) RegistrationRateLimitMiddleware() gin.HandlerFunc {
	return rl.limit("register:", "Too many registration attempts. Please try again later.")
}

// PasswordResetRateLimitMiddleware throttles the forgot-password endpoint per IP.
func (rl *LoginLimiter) PasswordResetRateLimitMiddleware() gin.HandlerFunc {
	return rl.limit("password-reset:", "Too many password reset attempts. Please try again later.")
}
