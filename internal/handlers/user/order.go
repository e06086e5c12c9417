package user

import (
	"net/http"

	"furniro_back_end/internal/handlers/common"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// 🟢 POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var input models.OrderInput
	if !common.BindJSON(c, &input) {
		return
	}
	order, err := h.orders.Create(c.Request.Context(), common.UserID(c), input)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// 🔵 GET /api/orders
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), common.UserID(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// 🔵 GET /api/orders/:orderId
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), common.UserID(c), common.Role(c), c.Param("orderId"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// 🟡 PUT /api/orders/:orderId/status (admin)
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var input struct {
		OrderStatus string `json:"orderStatus"`
	}
	if !common.BindJSON(c, &input) {
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("orderId"), input.OrderStatus)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
}

// 🔵 GET /api/orders/:orderId/invoice
func (h *OrderHandler) Invoice(c *gin.Context) {
	doc, err := h.orders.Invoice(c.Request.Context(), common.UserID(c), common.Role(c), c.Param("orderId"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}
