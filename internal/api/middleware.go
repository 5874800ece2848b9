package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "currentUsername"

// bearerToken extracts the bearer token from the Authorization header
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// requireAuth resolves the session token and aborts with 401 when no
// valid session is presented
func (r *Router) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := r.sessions.Resolve(c.Request.Context(), bearerToken(c))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(currentUserKey, username)
		c.Next()
	}
}

// optionalAuth resolves the session token when present but never aborts
func (r *Router) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if username, ok := r.sessions.Resolve(c.Request.Context(), bearerToken(c)); ok {
			c.Set(currentUserKey, username)
		}
		c.Next()
	}
}

// currentUsername returns the verified identity set by the middleware
func currentUsername(c *gin.Context) string {
	return c.GetString(currentUserKey)
}
