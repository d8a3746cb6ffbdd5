package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/alex-pricope/online-voting-system/auth"
	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/alex-pricope/online-voting-system/storage"
	"github.com/alex-pricope/online-voting-system/voting"
	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (voting.Caller, error)
}

// AuthMiddleware rejects requests without a valid bearer token and a live session.
func AuthMiddleware(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			logging.Log.Warnf("AUTH: missing token on %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		caller, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrSessionExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			case errors.Is(err, auth.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			default:
				logging.Log.Errorf("AUTH: could not authenticate request: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not authenticate request"})
			}
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is sent and lets
// anonymous requests through otherwise.
func OptionalAuth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if caller, err := authenticator.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(callerKey, caller)
			}
		}
		c.Next()
	}
}

// RequireRoles must run after AuthMiddleware.
func RequireRoles(roles ...storage.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFromContext(c)
		for _, role := range roles {
			if caller.Role == role {
				c.Next()
				return
			}
		}
		logging.Log.Warnf("AUTH: %s with role %s denied on %s", caller.UserID, caller.Role, c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// CallerFromContext returns the zero Caller for anonymous requests.
func CallerFromContext(c *gin.Context) voting.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(voting.Caller); ok {
			return caller
		}
	}
	return voting.Caller{}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
