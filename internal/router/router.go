package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebook/backend/internal/api"
	"github.com/tastebook/backend/internal/middleware"
)

// Handlers bundles everything the router needs to wire.
type Handlers struct {
	Auth       *api.AuthHandler
	Profile    *api.ProfileHandler
	Recipe     *api.RecipeHandler
	Category   *api.CategoryHandler
	Ingredient *api.IngredientHandler
	Favorite   *api.FavoriteHandler
	Rating     *api.RatingHandler
	Stats      *api.StatsHandler

	TokenValidator middleware.TokenValidator
	WriteLimiter   *middleware.RateLimiter
}

// Setup configures the application routes. Read endpoints accept optional
// authentication so logged-in users see their drafts and favorite marks;
// write endpoints require it and pass through the write rate limiter.
func Setup(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	public := v1.Group("")
	public.Use(middleware.OptionalAuth(h.TokenValidator))

	protected := v1.Group("")
	protected.Use(middleware.RequireAuth(h.TokenValidator))
	protected.Use(h.WriteLimiter.Middleware())

	h.Auth.RegisterRoutes(v1)
	h.Profile.RegisterRoutes(public, protected)
	h.Recipe.RegisterRoutes(public, protected)
	h.Category.RegisterRoutes(public)
	h.Ingredient.RegisterRoutes(public, protected)
	h.Favorite.RegisterRoutes(protected)
	h.Rating.RegisterRoutes(protected)
	h.Stats.RegisterRoutes(public, protected)

	return router
}
