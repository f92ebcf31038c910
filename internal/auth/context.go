package auth

import "github.com/gin-gonic/gin"

// GetActorID returns the authenticated caller's ID or empty string.
func GetActorID(c *gin.Context) string {
	if v, ok := c.Get("actorID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetTenantID returns the tenant the caller is acting within, or empty string.
func GetTenantID(c *gin.Context) string {
	if v, ok := c.Get("tenantID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
