package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"salesdesk/internal/utils"
)

const ClaimsKey = "claims"

func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenStr) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Missing bearer token",
			})
			return
		}

		claims, err := utils.ParseToken(secret, strings.TrimSpace(tokenStr))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// CurrentUser returns the authenticated username, or "" on public routes.
func CurrentUser(c *gin.Context) string {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*utils.Claims); ok {
			return claims.Username
		}
	}
	return ""
}
