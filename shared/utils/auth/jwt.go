package utils

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dwellport-backend/shared/config"
)

const (
	tokenIssuer      = "dwellport"
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims carries the portal identity inside both access and refresh
// tokens. TokenType keeps a refresh token from passing as an access token.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

var (
	secretOnce sync.Once
	secret     []byte
)

// jwtSecret resolves the signing key once, after configuration has loaded.
func jwtSecret() []byte {
	secretOnce.Do(func() {
		key := config.GetConfig().JWTSecret
		if key == "" {
			key = "fallback-secret-key-for-development"
		}
		secret = []byte(key)
	})
	return secret
}

// GetJWTExpireDuration returns the access token lifetime.
func GetJWTExpireDuration() time.Duration {
	cfg := config.GetConfig()
	if cfg.JWTExpireHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(cfg.JWTExpireHours) * time.Hour
}

// GetJWTRefreshExpireDuration returns the refresh token lifetime.
func GetJWTRefreshExpireDuration() time.Duration {
	cfg := config.GetConfig()
	if cfg.JWTRefreshExpireDays <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(cfg.JWTRefreshExpireDays) * 24 * time.Hour
}

func sign(claims Claims, lifetime time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
}

// GenerateJWT issues an access token for the user.
func GenerateJWT(userID uuid.UUID, email, role string) (string, error) {
	return sign(Claims{
		UserID:    userID.String(),
		Email:     email,
		Role:      role,
		TokenType: tokenTypeAccess,
	}, GetJWTExpireDuration())
}

// GenerateRefreshJWT issues a refresh token for the user.
func GenerateRefreshJWT(userID uuid.UUID, email string) (string, error) {
	return sign(Claims{
		UserID:    userID.String(),
		Email:     email,
		TokenType: tokenTypeRefresh,
	}, GetJWTRefreshExpireDuration())
}

func parse(tokenString, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != wantType {
		return nil, errors.New("wrong token type")
	}
	return claims, nil
}

// ValidateJWT verifies an access token and returns its claims.
func ValidateJWT(tokenString string) (*Claims, error) {
	return parse(tokenString, tokenTypeAccess)
}

// ValidateRefreshJWT verifies a refresh token and returns its claims.
func ValidateRefreshJWT(tokenString string) (*Claims, error) {
	return parse(tokenString, tokenTypeRefresh)
}
