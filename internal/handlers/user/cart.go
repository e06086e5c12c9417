package user

import (
	"net/http"

	"furniro_back_end/internal/handlers/common"
	"furniro_back_end/internal/service"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	carts *service.CartService
}

func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// 🔵 GET /api/cart
func (h *CartHandler) Get(c *gin.Context) {
	view, err := h.carts.Get(c.Request.Context(), common.UserID(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if len(view.Items) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Cart is empty", "cart": view})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": view})
}

// 🟢 POST /api/cart
// Fusion du panier local à la connexion.
func (h *CartHandler) Merge(c *gin.Context) {
	var input struct {
		Items []service.CartItemInput `json:"items"`
	}
	if !common.BindJSON(c, &input) {
		return
	}
	view, err := h.carts.Merge(c.Request.Context(), common.UserID(c), input.Items)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart synced", "cart": view})
}

// 🟢 POST /api/cart/add
func (h *CartHandler) Add(c *gin.Context) {
	var input service.CartItemInput
	if !common.BindJSON(c, &input) {
		return
	}
	view, err := h.carts.Add(c.Request.Context(), common.UserID(c), input)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product added to cart", "cart": view})
}

// 🟡 POST /api/cart/decrease
func (h *CartHandler) Decrease(c *gin.Context) {
	var input struct {
		ProductID string `json:"productId"`
	}
	if !common.BindJSON(c, &input) {
		return
	}
	view, err := h.carts.Decrease(c.Request.Context(), common.UserID(c), input.ProductID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item quantity updated", "cart": view})
}

// 🟡 PUT /api/cart/:productId
func (h *CartHandler) SetQuantity(c *gin.Context) {
	var input struct {
		Quantity *int `json:"quantity"`
	}
	if !common.BindJSON(c, &input) {
		return
	}
	if input.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity is required"})
		return
	}
	view, err := h.carts.SetQuantity(c.Request.Context(), common.UserID(c), c.Param("productId"), *input.Quantity)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	msg := "Item quantity updated"
	if *input.Quantity <= 0 {
		msg = "Product removed from cart"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "cart": view})
}

// 🔴 DELETE /api/cart/remove/:productId
func (h *CartHandler) Remove(c *gin.Context) {
	view, err := h.carts.Remove(c.Request.Context(), common.UserID(c), c.Param("productId"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed from cart", "cart": view})
}

// 🔴 DELETE /api/cart/clear
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), common.UserID(c)); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
