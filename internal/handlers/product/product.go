// Package product expose le catalogue: lecture publique, écriture admin.
package product

import (
	"net/http"

	"furniro_back_end/internal/handlers/common"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	catalog *service.CatalogService
}

func NewHandler(catalog *service.CatalogService) *Handler {
	return &Handler{catalog: catalog}
}

// 🔵 GET /api/products?category=&search=
func (h *Handler) List(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context(), models.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// 🔵 GET /api/products/:id
func (h *Handler) Get(c *gin.Context) {
	p, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// 🟢 POST /api/products (admin)
func (h *Handler) Create(c *gin.Context) {
	var input models.ProductInput
	if !common.BindJSON(c, &input) {
		return
	}
	p, err := h.catalog.Create(c.Request.Context(), input)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// 🟡 PUT /api/products/:id (admin)
func (h *Handler) Update(c *gin.Context) {
	var input models.ProductInput
	if !common.BindJSON(c, &input) {
		return
	}
	p, err := h.catalog.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// 🔴 DELETE /api/products/:id (admin)
func (h *Handler) Delete(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
