package admin

import (
	"net/http"

	"furniro_back_end/internal/handlers/common"
	"furniro_back_end/internal/service"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	auth *service.AuthService
}

func NewRoleHandler(auth *service.AuthService) *RoleHandler {
	return &RoleHandler{auth: auth}
}

type roleRequest struct {
	Role string `json:"role"`
}

// 🔴 PUT /api/admin/users/:id/role
func (h *RoleHandler) Assign(c *gin.Context) {
	var req roleRequest
	if !common.BindJSON(c, &req) {
		return
	}

	user, err := h.auth.SetRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated", "user": user})
}
