package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tastebook/backend/config"
	"github.com/tastebook/backend/internal/api"
	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/router"
	"github.com/tastebook/backend/internal/service"
	"github.com/tastebook/backend/pkg/logger"
)

// Server owns the HTTP engine and its dependencies.
type Server struct {
	engine *gin.Engine
	cfg    *config.Config
}

// New builds the service graph and wires the router. The redis client and
// S3 config may be nil; rate limiting and uploads degrade gracefully.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, s3cfg *config.S3Config) *Server {
	if cfg.App.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	authService := service.NewAuthService(db, cfg.JWT.Secret, cfg.JWT.ExpireDuration())
	recipeService := service.NewRecipeService(db)
	engagementService := service.NewEngagementService(db)
	catalogService := service.NewCatalogService(db)
	statsService := service.NewStatsService(db)
	profileService := service.NewProfileService(db)
	storageService := service.NewStorageService(s3cfg)

	var limiter *middleware.RateLimiter
	if redisClient != nil {
		limiter = middleware.NewWriteRateLimiter(redisClient)
	}

	engine := router.Setup(router.Handlers{
		Auth:       api.NewAuthHandler(authService),
		Profile:    api.NewProfileHandler(profileService, storageService),
		Recipe:     api.NewRecipeHandler(recipeService, engagementService, storageService),
		Category:   api.NewCategoryHandler(catalogService, recipeService),
		Ingredient: api.NewIngredientHandler(catalogService),
		Favorite:   api.NewFavoriteHandler(engagementService),
		Rating:     api.NewRatingHandler(engagementService),
		Stats:      api.NewStatsHandler(statsService),

		TokenValidator: authService,
		WriteLimiter:   limiter,
	})

	return &Server{engine: engine, cfg: cfg}
}

// Start serves HTTP until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.App.Host, s.cfg.App.Port),
		Handler: s.engine,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
