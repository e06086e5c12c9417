package product

import (
	"net/http"

	"furniro_back_end/internal/handlers/common"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20

// =========================
// 🟢 UPLOAD IMAGE PRODUIT
// =========================
// POST /api/products/:id/images (admin), champ multipart "image".
func (h *Handler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image too large (max 5MB)"})
		return
	}

	p, err := h.catalog.UploadImage(c.Request.Context(), c.Param("id"), header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Image uploaded successfully", "product": p})
}
