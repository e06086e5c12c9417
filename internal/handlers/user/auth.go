// Package user expose les routes liées au compte: authentification, panier,
// favoris et commandes.
package user

import (
	"net/http"

	"furniro_back_end/internal/handlers/common"
	"furniro_back_end/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// 🟢 POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if !common.BindJSON(c, &input) {
		return
	}
	res, err := h.auth.Register(c.Request.Context(), input)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully!",
		"user":    res.User,
		"token":   res.Token,
	})
}

// 🟢 POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if !common.BindJSON(c, &input) {
		return
	}
	res, err := h.auth.Login(c.Request.Context(), input)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    res.User,
		"token":   res.Token,
	})
}

// 🔵 GET /api/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	u, err := h.auth.Profile(c.Request.Context(), common.UserID(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}
