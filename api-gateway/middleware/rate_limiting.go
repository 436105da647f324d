package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"dwellport-backend/shared/config"
)

// clientWindow tracks one client's request count inside the current window.
type clientWindow struct {
	Count      int
	ResetAt    time.Time
	LastAccess time.Time
	Blocked    bool
	BlockUntil time.Time
}

// RateLimiter applies a fixed-window per-IP limit to all gateway traffic.
// Clients that exceed the limit are blocked for a configurable cooldown.
type RateLimiter struct {
	store       map[string]*clientWindow
	mutex       sync.Mutex
	cleanupTime time.Duration
}

// RateLimitConfig holds the window parameters.
type RateLimitConfig struct {
	MaxRequests   int
	TimeWindow    time.Duration
	BlockDuration time.Duration
}

// NewRateLimitConfig reads the gateway limits from configuration.
func NewRateLimitConfig() RateLimitConfig {
	cfg := config.GetConfig()

	return RateLimitConfig{
		MaxRequests:   cfg.RateLimitMaxRequests,
		TimeWindow:    time.Duration(cfg.RateLimitTimeWindowSeconds) * time.Second,
		BlockDuration: time.Duration(cfg.RateLimitBlockDurationMinutes) * time.Minute,
	}
}

// NewRateLimiter creates a limiter and starts its cleanup goroutine.
func NewRateLimiter(cleanupTime time.Duration) *RateLimiter {
	limiter := &RateLimiter{
		store:       make(map[string]*clientWindow),
		cleanupTime: cleanupTime,
	}

	go limiter.cleanup()

	return limiter
}

// cleanup drops clients that have been idle for a day.
func (rl *RateLimiter) cleanup() {
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

func (rl *RateLimiter) isAllowed(key string, cfg RateLimitConfig) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	window, exists := rl.store[key]

	if !exists {
		rl.store[key] = &clientWindow{
			Count:      1,
			ResetAt:    now.Add(cfg.TimeWindow),
			LastAccess: now,
		}
		return true
	}

	window.LastAccess = now

	if window.Blocked {
		if now.Before(window.BlockUntil) {
			return false
		}
		// Cooldown over, start a fresh window.
		window.Blocked = false
		window.Count = 1
		window.ResetAt = now.Add(cfg.TimeWindow)
		return true
	}

	if now.After(window.ResetAt) {
		window.Count = 1
		window.ResetAt = now.Add(cfg.TimeWindow)
		return true
	}

	if window.Count >= cfg.MaxRequests {
		window.Blocked = true
		window.BlockUntil = now.Add(cfg.BlockDuration)
		return false
	}

	window.Count++
	return true
}

// GlobalRateLimitMiddleware limits every request by client IP.
func (rl *RateLimiter) GlobalRateLimitMiddleware(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "global:" + c.ClientIP()

		if !rl.isAllowed(key, cfg) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     "Too many requests from this IP. Please try again later.",
				"retry_after": cfg.BlockDuration.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
