package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
)

// StatsService computes platform and per-user aggregates. Everything is
// calculated on demand from the live tables.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// CountBucket is one label/count pair in a breakdown.
type CountBucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// SiteStats is the platform-wide overview.
type SiteStats struct {
	TotalRecipes     int64          `json:"total_recipes"`
	TotalUsers       int64          `json:"total_users"`
	TotalCategories  int64          `json:"total_categories"`
	TotalIngredients int64          `json:"total_ingredients"`
	TotalRatings     int64          `json:"total_ratings"`
	TotalFavorites   int64          `json:"total_favorites"`
	AverageRating    float64        `json:"average_rating"`
	MostViewed       *models.Recipe `json:"most_viewed,omitempty"`
	ByCategory       []CountBucket  `json:"recipes_by_category"`
	ByDifficulty     []CountBucket  `json:"recipes_by_difficulty"`
}

// Overview returns the site-wide statistics over published recipes.
func (s *StatsService) Overview(ctx context.Context) (*SiteStats, error) {
	stats := &SiteStats{}
	db := s.db.WithContext(ctx)

	published := func() *gorm.DB {
		return db.Model(&models.Recipe{}).Where("published = ?", true)
	}

	if err := published().Count(&stats.TotalRecipes).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Category{}).Where("active = ?", true).Count(&stats.TotalCategories).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Ingredient{}).Count(&stats.TotalIngredients).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Rating{}).Count(&stats.TotalRatings).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Favorite{}).Count(&stats.TotalFavorites).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Rating{}).
		Select("COALESCE(AVG(score), 0)").
		Scan(&stats.AverageRating).Error; err != nil {
		return nil, err
	}

	var mostViewed models.Recipe
	err := published().
		Select(recipeColumns).
		Preload("Author").
		Preload("Category").
		Order("view_count DESC").
		First(&mostViewed).Error
	if err == nil {
		stats.MostViewed = &mostViewed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = published().
		Joins("JOIN categories ON categories.id = recipes.category_id").
		Select("categories.name AS label, COUNT(*) AS count").
		Group("categories.name").
		Order("count DESC").
		Scan(&stats.ByCategory).Error
	if err != nil {
		return nil, err
	}

	err = published().
		Select("difficulty AS label, COUNT(*) AS count").
		Group("difficulty").
		Order("count DESC").
		Scan(&stats.ByDifficulty).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// UserStats summarizes one author's activity.
type UserStats struct {
	TotalRecipes      int64   `json:"total_recipes"`
	PublishedRecipes  int64   `json:"published_recipes"`
	DraftRecipes      int64   `json:"draft_recipes"`
	TotalViews        int64   `json:"total_views"`
	AverageRating     float64 `json:"average_rating"`
	RatingsReceived   int64   `json:"ratings_received"`
	FavoritesReceived int64   `json:"favorites_received"`
	FavoritesGiven    int64   `json:"favorites_given"`
	RatingsGiven      int64   `json:"ratings_given"`
}

// ForUser returns the per-author statistics, drafts included.
func (s *StatsService) ForUser(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	stats := &UserStats{}
	db := s.db.WithContext(ctx)

	mine := func() *gorm.DB {
		return db.Model(&models.Recipe{}).Where("author_id = ?", userID)
	}

	if err := mine().Count(&stats.TotalRecipes).Error; err != nil {
		return nil, err
	}
	if err := mine().Where("published = ?", true).Count(&stats.PublishedRecipes).Error; err != nil {
		return nil, err
	}
	stats.DraftRecipes = stats.TotalRecipes - stats.PublishedRecipes

	if err := mine().
		Select("COALESCE(SUM(view_count), 0)").
		Scan(&stats.TotalViews).Error; err != nil {
		return nil, err
	}

	received := func() *gorm.DB {
		return db.Model(&models.Rating{}).
			Where("recipe_id IN (SELECT id FROM recipes WHERE author_id = ?)", userID)
	}
	if err := received().Count(&stats.RatingsReceived).Error; err != nil {
		return nil, err
	}
	if err := received().
		Select("COALESCE(AVG(score), 0)").
		Scan(&stats.AverageRating).Error; err != nil {
		return nil, err
	}

	err := db.Model(&models.Favorite{}).
		Where("recipe_id IN (SELECT id FROM recipes WHERE author_id = ?)", userID).
		Count(&stats.FavoritesReceived).Error
	if err != nil {
		return nil, err
	}
	if err := db.Model(&models.Favorite{}).Where("user_id = ?", userID).Count(&stats.FavoritesGiven).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Rating{}).Where("user_id = ?", userID).Count(&stats.RatingsGiven).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
