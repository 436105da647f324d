package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"dwellport-backend/shared/config"
)

// SessionEntry is the cached shape of a resolved session.
type SessionEntry struct {
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	CachedAt      time.Time `json:"cached_at"`
}

// SessionCache keeps resolved sessions in Redis for a short TTL so the
// gateway doesn't hit the auth service on every page request. Entries are
// keyed by the sha-256 of the session token, never the token itself.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// ErrCacheMiss is returned when no entry exists for a key.
var ErrCacheMiss = errors.New("session cache miss")

// NewSessionCache connects to Redis and verifies the connection.
func NewSessionCache(cfg *config.Config) (*SessionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("✅ Session cache connected - %s:%s DB:%d", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

	return &SessionCache{
		client: client,
		ttl:    time.Duration(cfg.SessionCacheTTLSeconds) * time.Second,
	}, nil
}

func sessionKey(tokenHash string) string {
	return "sess:" + tokenHash
}

// Get returns the cached session for a token hash, or ErrCacheMiss.
func (sc *SessionCache) Get(ctx context.Context, tokenHash string) (*SessionEntry, error) {
	raw, err := sc.client.Get(ctx, sessionKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var entry SessionEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Set caches a resolved session under its token hash.
func (sc *SessionCache) Set(ctx context.Context, tokenHash string, entry *SessionEntry) error {
	entry.CachedAt = time.Now().UTC()
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return sc.client.Set(ctx, sessionKey(tokenHash), raw, sc.ttl).Err()
}

// Invalidate drops a cached session, called on logout and session
// termination so stale entries don't outlive the session.
func (sc *SessionCache) Invalidate(ctx context.Context, tokenHash string) error {
	return sc.client.Del(ctx, sessionKey(tokenHash)).Err()
}

// Close releases the Redis connection.
func (sc *SessionCache) Close() error {
	return sc.client.Close()
}
