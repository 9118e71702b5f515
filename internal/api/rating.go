package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/service"
)

type RatingHandler struct {
	engagementService *service.EngagementService
}

func NewRatingHandler(engagement *service.EngagementService) *RatingHandler {
	return &RatingHandler{engagementService: engagement}
}

func (h *RatingHandler) RegisterRoutes(protected *gin.RouterGroup) {
	ratings := protected.Group("/ratings")
	{
		ratings.GET("", h.List)
		ratings.POST("", h.Create)
	}
}

// List returns the requester's own ratings.
func (h *RatingHandler) List(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	ratings, err := h.engagementService.ListMyRatings(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ratings})
}

type createRatingRequest struct {
	RecipeID uuid.UUID `json:"recipe_id" binding:"required"`
	Score    int       `json:"score" binding:"required,min=1,max=5"`
	Comment  string    `json:"comment" binding:"max=500"`
}

// Create upserts a rating addressed by recipe id in the body.
func (h *RatingHandler) Create(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req createRatingRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.engagementService.Rate(c.Request.Context(), userID, req.RecipeID, service.RateInput{
		Score:   req.Score,
		Comment: req.Comment,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
