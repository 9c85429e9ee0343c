package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenClaims is the verified identity carried by a bearer token.
type TokenClaims struct {
	UserID    uint
	TokenID   string
	ExpiresAt time.Time
}

// TokenValidator is an interface for validating JWT tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// AuthMiddleware creates a middleware that requires a valid bearer
// token and stores the caller's identity in the request context.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication credentials were not provided"})
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("token", token)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller's identity when a valid
// token is present but lets anonymous requests through. Read endpoints
// use it so projections like is_favorited can be filled in.
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := validator.ValidateToken(c.Request.Context(), token); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("token", token)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// CurrentUserID returns the authenticated user id stored by the auth
// middleware, or false for anonymous requests.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
