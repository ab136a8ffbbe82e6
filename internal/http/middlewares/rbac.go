package middlewares

import (
	"net/http"

	"github.com/rmacedo/custeio/internal/security"
	"github.com/gin-gonic/gin"
)

// RequireAdmin gates the privileged routes (upload, request management,
// history). Handlers still invoke the same policy before writing; this is
// the outer gate, not the only one.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}
		if !security.IsAdmin(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Admin role required",
				},
			})
			return
		}
		c.Next()
	}
}
