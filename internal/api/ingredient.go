package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebook/backend/internal/service"
)

type IngredientHandler struct {
	catalogService *service.CatalogService
}

func NewIngredientHandler(catalog *service.CatalogService) *IngredientHandler {
	return &IngredientHandler{catalogService: catalog}
}

func (h *IngredientHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	ingredients := public.Group("/ingredients")
	{
		ingredients.GET("", h.List)
		ingredients.GET("/most_used", h.MostUsed)
	}

	protected.POST("/ingredients", h.Create)
}

func (h *IngredientHandler) List(c *gin.Context) {
	filter := service.IngredientFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	}
	ingredients, err := h.catalogService.ListIngredients(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ingredients})
}

func (h *IngredientHandler) MostUsed(c *gin.Context) {
	ingredients, err := h.catalogService.MostUsed(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ingredients})
}

func (h *IngredientHandler) Create(c *gin.Context) {
	var in service.CreateIngredientInput
	if !bindJSON(c, &in) {
		return
	}

	ingredient, err := h.catalogService.CreateIngredient(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}
