package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebook/backend/internal/service"
)

type CategoryHandler struct {
	catalogService *service.CatalogService
	recipeService  *service.RecipeService
}

func NewCategoryHandler(catalog *service.CatalogService, recipes *service.RecipeService) *CategoryHandler {
	return &CategoryHandler{catalogService: catalog, recipeService: recipes}
}

func (h *CategoryHandler) RegisterRoutes(public *gin.RouterGroup) {
	categories := public.Group("/categories")
	{
		categories.GET("", h.List)
		categories.GET("/:id", h.Get)
		categories.GET("/:id/recipes", h.Recipes)
	}
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": categories})
}

func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.catalogService.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) Recipes(c *gin.Context) {
	category, err := h.catalogService.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	page, pageSize := pageParams(c)
	filter := service.RecipeFilter{
		CategorySlug: category.Slug,
		Ordering:     c.Query("ordering"),
		Page:         page,
		PageSize:     pageSize,
	}
	recipes, total, err := h.recipeService.List(c.Request.Context(), requesterID(c), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(recipes, total, page, pageSize))
}
