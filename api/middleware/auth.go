package middleware

import (
	"net/http"
	"strings"

	"foodi/services"

	"github.com/gin-gonic/gin"
)

var userService = services.NewUserService()

// AuthMiddleware - middleware для аутентификации по токену.
// Ожидает Authorization: Bearer <token>, кладет user_id в контекст.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required: provide Authorization Bearer token"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := userService.CheckToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("token", token)
		c.Next()
	}
}

// TestAuthMiddleware - middleware для тестовой аутентификации
// Поддерживает два варианта:
// 1. X-User-ID заголовок (для простых тестов)
// 2. Authorization: Bearer <token> (для интеграционных тестов)
func TestAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Сначала проверяем X-User-ID заголовок
		userIDHeader := c.GetHeader("X-User-ID")
		if userIDHeader != "" {
			c.Set("user_id", userIDHeader)
			c.Next()
			return
		}

		// Затем проверяем Authorization Bearer token
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if userID, err := userService.CheckToken(c.Request.Context(), token); err == nil {
				c.Set("user_id", userID)
				c.Set("token", token)
				c.Next()
				return
			}
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required: provide X-User-ID header or Authorization Bearer token"})
		c.Abort()
	}
}

// OptionalAuthMiddleware - middleware для опциональной аутентификации
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if userID, err := userService.CheckToken(c.Request.Context(), token); err == nil {
				c.Set("user_id", userID)
			}
		}
		c.Next()
	}
}
