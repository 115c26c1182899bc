package auth

import (
	"net/http"
	"strings"

	"waitlist/internal/response"

	"github.com/gin-gonic/gin"
)

// Middleware проверяет access токен администратора. Если пароль
// не настроен, запросы пропускаются без проверки.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:  "NO_AUTH_HEADER",
				Error: "authorization required",
			})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if err := a.Verify(tokenString); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:  "INVALID_TOKEN",
				Error: "invalid or expired token",
			})
			return
		}

		c.Set("role", "admin")
		c.Next()
	}
}
