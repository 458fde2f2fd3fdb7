package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/odouglasrocha/apiplano/utils"
)

// SessionMiddleware resolves the auth cookie into request context. A
// request without a cookie passes through anonymous; protected handlers
// check the role themselves. A present-but-invalid token is rejected
// here so an expired session never looks anonymous downstream.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("token")
		if err != nil || token == "" {
			c.Next()
			return
		}

		claims, err := utils.JwtValidate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "sessão expirada ou inválida"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUsernameInContext(ctx, claims.Username)
		ctx = utils.SetRoleInContext(ctx, claims.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin gates a route group on an authenticated admin session.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := utils.GetRoleFromContext(c.Request.Context())
		if !ok || role != "admin" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "autenticação necessária"})
			c.Abort()
			return
		}
		c.Next()
	}
}
