package middleware

import (
	"net/http"
	"strings"

	"savelog/internal/domain"
	"savelog/internal/modules/auth"
	"savelog/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const userContextKey = "current_user"

// RequireAuth rejects the request unless a valid bearer token resolves to an
// existing user. The resolved user lands in the request context.
func RequireAuth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		user, err := svc.CurrentUser(c.Request.Context(), tokenStr)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// OptionalAuth resolves a bearer token when one is presented but never
// rejects the request. Anonymous and invalid-token callers proceed without an
// identity; the access rules downstream decide what that means.
func OptionalAuth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr != "" {
			if user, err := svc.CurrentUser(c.Request.Context(), tokenStr); err == nil {
				c.Set(userContextKey, user)
			}
		}
		c.Next()
	}
}

// UserFromContext returns the identity resolved by the auth middleware, or
// nil for anonymous requests.
func UserFromContext(c *gin.Context) *domain.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := v.(*domain.User)
	if !ok {
		return nil
	}
	return user
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
