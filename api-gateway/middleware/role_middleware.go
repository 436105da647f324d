package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"dwellport-backend/shared/config"
	"dwellport-backend/shared/roles"
)

// RequireRole gates an API route on the role claim of the bearer token. The
// downstream service still enforces its own checks; this keeps obviously
// unauthorized traffic from crossing the gateway at all.
func RequireRole(required roles.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, err := extractClaimsFromToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or missing token",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		if roles.Parse(role) != required {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
				"code":  "FORBIDDEN",
				"details": gin.H{
					"required_role": string(required),
				},
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("user_role", role)
		c.Next()
	}
}

// RequireAuthentication only checks that a valid bearer token is present.
func RequireAuthentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, err := extractClaimsFromToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or missing token",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("user_role", role)
		c.Next()
	}
}

// extractClaimsFromToken parses the Authorization header and returns the
// user id and role claims.
func extractClaimsFromToken(c *gin.Context) (string, string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "", jwt.ErrInvalidKey
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return "", "", jwt.ErrInvalidKey
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		cfg := config.GetConfig()
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return "", "", err
	}
	if !token.Valid {
		return "", "", jwt.ErrInvalidKey
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", jwt.ErrInvalidKey
	}

	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" {
		return "", "", jwt.ErrInvalidKey
	}
	return userID, role, nil
}
