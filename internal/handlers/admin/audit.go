package admin

import (
	"log"
	"net/http"
	"strconv"

	"furniro_back_end/internal/audit"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	reader audit.Reader
}

// NewAuditHandler accepte un reader nil quand ScyllaDB n'est pas configuré.
func NewAuditHandler(reader audit.Reader) *AuditHandler {
	return &AuditHandler{reader: reader}
}

// 🔴 GET /api/admin/audit
func (h *AuditHandler) List(c *gin.Context) {
	if h.reader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Audit log storage is not configured"})
		return
	}

	filter := audit.Filter{
		UserID:     c.Query("user_id"),
		Action:     c.Query("action"),
		Resource:   c.Query("resource"),
		ResourceID: c.Query("resource_id"),
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(audit.DefaultQueryLimit)))
	if raw := c.Query("success"); raw != "" {
		success, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid success filter"})
			return
		}
		filter.Success = &success
	}

	logs, err := h.reader.Query(c.Request.Context(), filter)
	if err != nil {
		log.Printf("❌ Erreur récupération logs audit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"total": len(logs),
		"filters": gin.H{
			"user_id":     filter.UserID,
			"action":      filter.Action,
			"resource":    filter.Resource,
			"resource_id": filter.ResourceID,
			"success":     filter.Success,
			"limit":       filter.Limit,
		},
	})
}
