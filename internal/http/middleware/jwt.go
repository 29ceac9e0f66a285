package middleware

import (
	"net/http"
	"strings"

	"knowo_wallet/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminJWT guards the admin console endpoints. The token subject is stored
// in the context as "admin_subject" and ends up in the audit log.
func AdminJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		subject, err := service.ParseAdminToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("admin_subject", subject)
		c.Next()
	}
}
