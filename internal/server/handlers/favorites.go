package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"materiaux-pro/internal/server/middleware"
	"materiaux-pro/internal/service"
)

type FavoriteHandler struct {
	favorites *service.FavoriteService
}

func NewFavoriteHandler(favorites *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

type AddFavoriteRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	favorites, err := h.favorites.List(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("favorites", favorites))
}

func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	favorite, err := h.favorites.Add(c.Request.Context(), identity, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("favorite added", favorite))
}

func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	if err := h.favorites.Remove(c.Request.Context(), identity, productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("favorite removed", nil))
}
