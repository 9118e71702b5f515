package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/service"
)

type FavoriteHandler struct {
	engagementService *service.EngagementService
}

func NewFavoriteHandler(engagement *service.EngagementService) *FavoriteHandler {
	return &FavoriteHandler{engagementService: engagement}
}

func (h *FavoriteHandler) RegisterRoutes(protected *gin.RouterGroup) {
	favorites := protected.Group("/favorites")
	{
		favorites.GET("", h.List)
		favorites.POST("", h.Add)
		favorites.DELETE("/:recipe_id", h.Remove)
	}
}

func (h *FavoriteHandler) List(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	favorites, err := h.engagementService.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": favorites})
}

type addFavoriteRequest struct {
	RecipeID uuid.UUID `json:"recipe_id" binding:"required"`
}

func (h *FavoriteHandler) Add(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req addFavoriteRequest
	if !bindJSON(c, &req) {
		return
	}

	favorite, err := h.engagementService.AddFavorite(c.Request.Context(), userID, req.RecipeID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, favorite)
}

func (h *FavoriteHandler) Remove(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	recipeID, err := uuid.Parse(c.Param("recipe_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.engagementService.RemoveFavorite(c.Request.Context(), userID, recipeID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
