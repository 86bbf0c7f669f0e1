package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"funnelwerk/internal/pkg/jwt"
)

// RequireAdmin guards the dashboard API with a bearer JWT. On success the
// admin id and email are stored on the context for handlers and logging.
func RequireAdmin(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "AUTH_MISSING", "message": "Authorization header is required"},
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "AUTH_INVALID", "message": "Authorization header must be 'Bearer <token>'"},
			})
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "AUTH_INVALID", "message": "Invalid or expired token"},
			})
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("admin_email", claims.Email)
		c.Next()
	}
}
