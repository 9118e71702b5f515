package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/service"
)

type RecipeHandler struct {
	recipeService     *service.RecipeService
	engagementService *service.EngagementService
	storageService    *service.StorageService
}

func NewRecipeHandler(recipes *service.RecipeService, engagement *service.EngagementService, storage *service.StorageService) *RecipeHandler {
	return &RecipeHandler{
		recipeService:     recipes,
		engagementService: engagement,
		storageService:    storage,
	}
}

// RegisterRoutes wires the recipe endpoints. Reads go on the public group
// so anonymous browsing works, writes on the authenticated group.
func (h *RecipeHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	reads := public.Group("/recipes")
	{
		reads.GET("", h.List)
		reads.GET("/featured", h.Featured)
		reads.GET("/most_viewed", h.MostViewed)
		reads.GET("/top_rated", h.TopRated)
		reads.GET("/by_ingredients", h.ByIngredients)
		reads.GET("/:id", h.Get)
		reads.GET("/:id/ratings", h.ListRatings)
	}

	writes := protected.Group("/recipes")
	{
		writes.GET("/mine", h.Mine)
		writes.POST("", h.Create)
		writes.PATCH("/:id", h.Update)
		writes.PUT("/:id", h.Update)
		writes.DELETE("/:id", h.Delete)
		writes.POST("/:id/toggle_favorite", h.ToggleFavorite)
		writes.POST("/:id/rate", h.Rate)
		writes.DELETE("/:id/rating", h.DeleteRating)
		writes.POST("/:id/images", h.UploadImage)
	}
}

func parseFilter(c *gin.Context) service.RecipeFilter {
	var f service.RecipeFilter

	intParam := func(name string) *int {
		if raw := c.Query(name); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil {
				return &v
			}
		}
		return nil
	}
	listParam := func(name string) []string {
		var out []string
		for _, raw := range c.QueryArray(name) {
			for _, part := range strings.Split(raw, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
		return out
	}
	timeParam := func(name string) *time.Time {
		raw := c.Query(name)
		if raw == "" {
			return nil
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return &t
			}
		}
		return nil
	}

	f.MaxPrepTime = intParam("max_prep_time")
	f.MaxTotalTime = intParam("max_total_time")
	f.Difficulties = listParam("difficulty")
	f.ServingsMin = intParam("servings_min")
	f.ServingsMax = intParam("servings_max")
	f.Ingredients = listParam("ingredients")
	f.CategorySlug = c.Query("category")
	f.Author = c.Query("author")
	f.MaxCalories = intParam("max_calories")
	f.CreatedFrom = timeParam("created_from")
	f.CreatedTo = timeParam("created_to")
	f.Search = c.Query("search")
	f.Ordering = c.Query("ordering")

	if raw := c.Query("featured"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			f.Featured = &v
		}
	}

	f.Page, f.PageSize = pageParams(c)
	return f
}

func (h *RecipeHandler) List(c *gin.Context) {
	filter := parseFilter(c)
	recipes, total, err := h.recipeService.List(c.Request.Context(), requesterID(c), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(recipes, total, filter.Page, filter.PageSize))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), requesterID(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	// Fetching a detail page counts as a view.
	if err := h.recipeService.IncrementViews(c.Request.Context(), id); err == nil {
		recipe.ViewCount++
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) Create(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var in service.CreateRecipeInput
	if !bindJSON(c, &in) {
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), userID, in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) Update(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var in service.UpdateRecipeInput
	if !bindJSON(c, &in) {
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), userID, id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	status, err := h.engagementService.ToggleFavorite(c.Request.Context(), userID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *RecipeHandler) Rate(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var in service.RateInput
	if !bindJSON(c, &in) {
		return
	}

	result, err := h.engagementService.Rate(c.Request.Context(), userID, id, in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *RecipeHandler) ListRatings(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	ratings, err := h.engagementService.ListRatings(c.Request.Context(), requesterID(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ratings})
}

func (h *RecipeHandler) DeleteRating(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.engagementService.DeleteRating(c.Request.Context(), userID, id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	// Only the author may extend the gallery; Update enforces ownership
	// once the file is stored, so check up front instead.
	recipe, err := h.recipeService.Get(c.Request.Context(), &userID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if recipe.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": service.ErrNotRecipeAuthor.Error()})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	url, err := h.storageService.UploadRecipeImage(c.Request.Context(), id, file)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	images := make([]service.RecipeImageInput, 0, len(recipe.Images)+1)
	for _, img := range recipe.Images {
		images = append(images, service.RecipeImageInput{
			URL:          img.URL,
			Caption:      img.Caption,
			DisplayOrder: img.DisplayOrder,
		})
	}
	images = append(images, service.RecipeImageInput{
		URL:          url,
		Caption:      c.PostForm("caption"),
		DisplayOrder: len(images),
	})

	updated, err := h.recipeService.Update(c.Request.Context(), userID, id, service.UpdateRecipeInput{Images: &images})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, updated)
}

func (h *RecipeHandler) Featured(c *gin.Context) {
	recipes, err := h.recipeService.Featured(c.Request.Context(), requesterID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": recipes})
}

func (h *RecipeHandler) MostViewed(c *gin.Context) {
	recipes, err := h.recipeService.MostViewed(c.Request.Context(), requesterID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": recipes})
}

func (h *RecipeHandler) TopRated(c *gin.Context) {
	recipes, err := h.recipeService.TopRated(c.Request.Context(), requesterID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": recipes})
}

func (h *RecipeHandler) Mine(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	recipes, err := h.recipeService.Mine(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": recipes})
}

func (h *RecipeHandler) ByIngredients(c *gin.Context) {
	var names []string
	for _, raw := range c.QueryArray("ingredients") {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, part)
			}
		}
	}
	if len(names) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one ingredient is required"})
		return
	}

	recipes, err := h.recipeService.ByIngredients(c.Request.Context(), requesterID(c), names)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": recipes})
}
