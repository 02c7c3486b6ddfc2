package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	UserContextKey  = "userID"
	RoleContextKey  = "role"
	EmailContextKey = "email"
)

// Identity reads the identity headers injected by the API gateway, falling
// back to the gateway cookies.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := headerOrCookie(c, "X-User-ID", "user_id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(UserContextKey, userID)
		c.Set(RoleContextKey, headerOrCookie(c, "X-User-Role", "user_role"))
		c.Set(EmailContextKey, headerOrCookie(c, "X-User-Email", "user_email"))
		c.Next()
	}
}

func headerOrCookie(c *gin.Context, header, cookie string) string {
	if v := c.GetHeader(header); v != "" {
		return v
	}
	if v, err := c.Cookie(cookie); err == nil {
		return v
	}
	return ""
}

// UserID returns the caller set by Identity, or "".
func UserID(c *gin.Context) string {
	return c.GetString(UserContextKey)
}

// AdminOnly restricts access to the admin role.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleContextKey) != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			return
		}
		c.Next()
	}
}
