// Package payment expose le paiement simulé (ou Stripe en mode test).
package payment

import (
	"net/http"

	"furniro_back_end/internal/handlers/common"
	"furniro_back_end/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	payments *service.PaymentService
}

func NewHandler(payments *service.PaymentService) *Handler {
	return &Handler{payments: payments}
}

// 💳 POST /api/payments/create-payment-intent
func (h *Handler) CreateIntent(c *gin.Context) {
	var input service.CreateIntentInput
	if !common.BindJSON(c, &input) {
		return
	}
	res, err := h.payments.CreateIntent(c.Request.Context(), common.UserID(c), input)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"paymentIntent": res.PaymentIntent,
		"paymentId":     res.PaymentID,
	})
}

// 💳 POST /api/payments/confirm-payment
func (h *Handler) Confirm(c *gin.Context) {
	var input service.ConfirmInput
	if !common.BindJSON(c, &input) {
		return
	}
	res, err := h.payments.Confirm(c.Request.Context(), common.UserID(c), input)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	c.JSON(status, res)
}

// 🔵 GET /api/payments/status/:paymentId
func (h *Handler) Status(c *gin.Context) {
	p, err := h.payments.Status(c.Request.Context(), common.UserID(c), c.Param("paymentId"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"payment": gin.H{
			"id":            p.ID,
			"transactionId": p.TransactionID,
			"paymentMethod": p.PaymentMethod,
			"paymentStatus": p.PaymentStatus,
			"amount":        p.Amount,
			"currency":      p.Currency,
			"order":         p.Order,
			"createdAt":     p.CreatedAt,
		},
	})
}

// 🔵 GET /api/payments/config
func (h *Handler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "publishableKey": h.payments.PublishableKey()})
}
