package main

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/odouglasrocha/apiplano/utils"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// checkAdminPassword prefers the bcrypt hash (ADMIN_PASS_HASH) and only
// falls back to the plain ADMIN_PASS for local development.
func checkAdminPassword(password string) bool {
	if hash := os.Getenv("ADMIN_PASS_HASH"); hash != "" {
		return utils.ComparePassword(hash, password) == nil
	}
	plain := os.Getenv("ADMIN_PASS")
	if plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(plain), []byte(password)) == 1
}

func cookieMaxAge() int {
	lifespan, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || lifespan <= 0 {
		lifespan = 1
	}
	return lifespan * 3600
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "usuário e senha são obrigatórios"})
			return
		}

		adminUser := os.Getenv("ADMIN_USER")
		if adminUser == "" {
			adminUser = "admin"
		}
		if subtle.ConstantTimeCompare([]byte(req.Username), []byte(adminUser)) != 1 || !checkAdminPassword(req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "credenciais inválidas"})
			return
		}

		token, err := utils.JwtGenerate(adminUser, "admin")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao gerar sessão"})
			return
		}

		secure := os.Getenv("GO_ENV") == "production"
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie("token", token, cookieMaxAge(), "/", "", secure, true)
		c.JSON(http.StatusOK, gin.H{"ok": true, "username": adminUser, "role": "admin"})
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		secure := os.Getenv("GO_ENV") == "production"
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie("token", "", -1, "/", "", secure, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// sessionHandler lets the dashboard check whether its cookie still works.
func sessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := utils.GetUsernameFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
			return
		}
		role, _ := utils.GetRoleFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"authenticated": true, "username": username, "role": role})
	}
}
