// Package session resolves the portal session cookie into an identity by
// asking the auth service, with a short-lived Redis cache in front so hot
// pages don't generate a resolve call per request.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dwellport-backend/api-gateway/gate"
	"dwellport-backend/shared/config"
	utils "dwellport-backend/shared/utils/auth"
	"dwellport-backend/shared/utils/cache"
)

// Resolver turns raw session tokens into gate.Session values.
type Resolver struct {
	cache      *cache.SessionCache
	authURL    string
	httpClient *http.Client
}

// NewResolver builds a resolver against the configured auth service.
func NewResolver(cfg *config.Config, sessionCache *cache.SessionCache) *Resolver {
	return &Resolver{
		cache:   sessionCache,
		authURL: cfg.AuthServiceURL,
		httpClient: &http.Client{
			Timeout: 3 * time.Second,
		},
	}
}

type resolveRequest struct {
	Token string `json:"token"`
}

type resolveResponse struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}

// Resolve returns the session for a token, (nil, nil) when the token is
// unknown or expired, and an error only when the lookup itself failed. The
// caller maps that error to the gate's fail-closed path.
func (r *Resolver) Resolve(ctx context.Context, token string) (*gate.Session, error) {
	tokenHash := utils.HashSessionToken(token)

	if entry, err := r.cache.Get(ctx, tokenHash); err == nil {
		return &gate.Session{
			UserID:        entry.UserID,
			Email:         entry.Email,
			Role:          entry.Role,
			EmailVerified: entry.EmailVerified,
		}, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		// Cache down is not fatal; fall through to the auth service.
		fmt.Printf("⚠️ Session cache read failed: %v\n", err)
	}

	sess, err := r.resolveRemote(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	if err := r.cache.Set(ctx, tokenHash, &cache.SessionEntry{
		UserID:        sess.UserID,
		Email:         sess.Email,
		Role:          sess.Role,
		EmailVerified: sess.EmailVerified,
	}); err != nil {
		fmt.Printf("⚠️ Session cache write failed: %v\n", err)
	}

	return sess, nil
}

// Invalidate drops the cached entry for a token, used when logout passes
// through the gateway.
func (r *Resolver) Invalidate(ctx context.Context, token string) {
	if err := r.cache.Invalidate(ctx, utils.HashSessionToken(token)); err != nil {
		fmt.Printf("⚠️ Session cache invalidation failed: %v\n", err)
	}
}

func (r *Resolver) resolveRemote(ctx context.Context, token string) (*gate.Session, error) {
	body, err := json.Marshal(resolveRequest{Token: token})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/auth/resolve-session", r.authURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session resolve request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload resolveResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("session resolve decode failed: %w", err)
		}
		return &gate.Session{
			UserID:        payload.UserID,
			Email:         payload.Email,
			Role:          payload.Role,
			EmailVerified: payload.EmailVerified,
		}, nil
	case http.StatusUnauthorized, http.StatusNotFound:
		// Token unknown or expired; not an infrastructure failure.
		return nil, nil
	default:
		return nil, fmt.Errorf("session resolve returned status %d", resp.StatusCode)
	}
}
