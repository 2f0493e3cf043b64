package middleware

import (
	"net/http"
	"strings"

	"drivedrop-backend/internal/models"
	"drivedrop-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Отсутствует токен авторизации"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверный формат токена"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Недействительный токен"})
			c.Abort()
			return
		}

		if claims.Role == models.RoleAdmin {
			// Для административного токена user_id может отсутствовать
			c.Set("user_id", claims.UserID)
			c.Set("role", models.RoleAdmin)
			c.Next()
			return
		}

		if claims.UserID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Недействительный ID пользователя"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// CanAccess чистая проверка доступа роли к маршруту.
// Администратору доступно все; пустой список ролей означает "любой авторизованный".
func CanAccess(role string, allowed ...string) bool {
	if role == models.RoleAdmin {
		return true
	}
	if len(allowed) == 0 {
		return role != ""
	}
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}

// RequireRoles декларативная проверка роли на входе в маршрут.
// Выполняется после JWTAuth, который кладет role в контекст.
func RequireRoles(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Роль пользователя не определена"})
			c.Abort()
			return
		}

		role, ok := roleValue.(string)
		if !ok || !CanAccess(role, allowed...) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Недостаточно прав для этого действия"})
			c.Abort()
			return
		}

		c.Next()
	}
}
