package handlers

import (
	"net/http"

	"waitlist/internal/auth"
	"waitlist/internal/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest - пароль администратора
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AuthHandler выдаёт токены администратора.
type AuthHandler struct {
	auth *auth.Authenticator
}

func NewAuthHandler(a *auth.Authenticator) *AuthHandler {
	return &AuthHandler{auth: a}
}

// Login проверяет общий пароль и выдаёт access токен
// @Summary		Вход администратора
// @Description	Проверка общего пароля администратора и получение токена
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			body	body		LoginRequest			true	"Пароль"
// @Success		200		{object}	response.TokenResponse	"Успешная авторизация"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации данных (VALIDATION_ERROR)"
// @Failure		401		{object}	response.ErrorResponse	"Неверный пароль (INVALID_CREDENTIALS)"
// @Failure		404		{object}	response.ErrorResponse	"Авторизация выключена (AUTH_DISABLED)"
// @Router			/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.auth.Enabled() {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:  "AUTH_DISABLED",
			Error: "admin authentication is not configured",
		})
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Error:   "password is required",
			Details: err.Error(),
		})
		return
	}

	token, exp, err := h.auth.Login(req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{
			Code:  "INVALID_CREDENTIALS",
			Error: "invalid password",
		})
		return
	}

	c.JSON(http.StatusOK, response.TokenResponse{AccessToken: token, ExpiresAt: exp.Unix()})
}
