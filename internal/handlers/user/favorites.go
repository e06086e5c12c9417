package user

import (
	"net/http"

	"furniro_back_end/internal/handlers/common"
	"furniro_back_end/internal/service"

	"github.com/gin-gonic/gin"
)

type FavoritesHandler struct {
	favorites *service.FavoritesService
}

func NewFavoritesHandler(favorites *service.FavoritesService) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites}
}

// 🔵 GET /api/favorites
func (h *FavoritesHandler) Get(c *gin.Context) {
	view, err := h.favorites.Get(c.Request.Context(), common.UserID(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": view.Products})
}

// 🟢 POST /api/favorites
func (h *FavoritesHandler) Merge(c *gin.Context) {
	var input struct {
		ProductIDs []string `json:"productIds"`
	}
	if !common.BindJSON(c, &input) {
		return
	}
	view, err := h.favorites.Merge(c.Request.Context(), common.UserID(c), input.ProductIDs)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Favorites synced", "products": view.Products})
}

// 🟢 POST /api/favorites/add
func (h *FavoritesHandler) Add(c *gin.Context) {
	var input struct {
		ProductID string `json:"productId"`
	}
	if !common.BindJSON(c, &input) {
		return
	}
	view, err := h.favorites.Add(c.Request.Context(), common.UserID(c), input.ProductID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product added to favorites successfully", "products": view.Products})
}

// 🔴 DELETE /api/favorites/remove/:productId
func (h *FavoritesHandler) Remove(c *gin.Context) {
	view, err := h.favorites.Remove(c.Request.Context(), common.UserID(c), c.Param("productId"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed from favorites successfully", "products": view.Products})
}

// 🔴 DELETE /api/favorites/clear
func (h *FavoritesHandler) Clear(c *gin.Context) {
	if err := h.favorites.Clear(c.Request.Context(), common.UserID(c)); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All favorites cleared successfully"})
}

// 🔵 GET /api/favorites/check/:productId
func (h *FavoritesHandler) Check(c *gin.Context) {
	ok, err := h.favorites.Check(c.Request.Context(), common.UserID(c), c.Param("productId"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFavorite": ok})
}
