package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
)

var (
	ErrOwnRecipeRating = errors.New("authors cannot rate their own recipes")
	ErrRatingNotFound  = errors.New("rating not found")
)

// EngagementService handles favorites and ratings.
type EngagementService struct {
	db *gorm.DB
}

func NewEngagementService(db *gorm.DB) *EngagementService {
	return &EngagementService{db: db}
}

// FavoriteStatus reports the outcome of a toggle.
type FavoriteStatus struct {
	RecipeID  uuid.UUID `json:"recipe_id"`
	Favorited bool      `json:"favorited"`
}

// ToggleFavorite flips the favorite mark for a visible recipe. A favorite
// that already exists is removed, otherwise one is created. The unique
// (user, recipe) index keeps concurrent toggles from producing duplicates.
func (s *EngagementService) ToggleFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*FavoriteStatus, error) {
	if err := s.checkVisible(ctx, &userID, recipeID); err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		return &FavoriteStatus{RecipeID: recipeID, Favorited: false}, nil
	}

	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&fav).Error; err != nil {
		// A concurrent toggle won the race; the mark is present either way.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &FavoriteStatus{RecipeID: recipeID, Favorited: true}, nil
		}
		return nil, err
	}
	return &FavoriteStatus{RecipeID: recipeID, Favorited: true}, nil
}

// AddFavorite marks a recipe as favorite, succeeding silently when the
// mark already exists.
func (s *EngagementService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Favorite, error) {
	if err := s.checkVisible(ctx, &userID, recipeID); err != nil {
		return nil, err
	}

	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&fav).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = s.db.WithContext(ctx).
				Where("user_id = ? AND recipe_id = ?", userID, recipeID).
				First(&fav).Error
			if err != nil {
				return nil, err
			}
			return &fav, nil
		}
		return nil, err
	}
	return &fav, nil
}

// RemoveFavorite drops the favorite mark if present.
func (s *EngagementService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// ListFavorites returns the user's favorited recipes with derived fields.
func (s *EngagementService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Recipe", func(db *gorm.DB) *gorm.DB {
			return db.Select(recipeColumns)
		}).
		Preload("Recipe.Author").
		Preload("Recipe.Category").
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	for i := range favorites {
		favorites[i].Recipe.IsFavorite = true
	}
	return favorites, nil
}

// RateInput holds a score and optional comment.
type RateInput struct {
	Score   int    `json:"score" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=500"`
}

// RatingResult bundles the stored rating with the recipe's refreshed
// average so clients can update their display in one round trip.
type RatingResult struct {
	Rating        *models.Rating `json:"rating"`
	AverageRating float64        `json:"average_rating"`
}

// Rate records or revises the user's rating for a visible recipe. Authors
// cannot rate their own work. Rating twice updates the earlier score
// instead of adding a second row.
func (s *EngagementService) Rate(ctx context.Context, userID, recipeID uuid.UUID, in RateInput) (*RatingResult, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Where("id = ? AND (published = ? OR author_id = ?)", recipeID, true, userID).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if recipe.AuthorID == userID {
		return nil, ErrOwnRecipeRating
	}

	var rating models.Rating
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			First(&rating).Error
		switch {
		case err == nil:
			return tx.Model(&rating).
				Updates(map[string]interface{}{"score": in.Score, "comment": in.Comment}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			rating = models.Rating{
				UserID:   userID,
				RecipeID: recipeID,
				Score:    in.Score,
				Comment:  in.Comment,
			}
			if err := tx.Create(&rating).Error; err != nil {
				// A concurrent rating from the same user landed first.
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					if err := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).
						First(&rating).Error; err != nil {
						return err
					}
					return tx.Model(&rating).
						Updates(map[string]interface{}{"score": in.Score, "comment": in.Comment}).Error
				}
				return err
			}
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	average, err := s.averageFor(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return &RatingResult{Rating: &rating, AverageRating: average}, nil
}

// ListMyRatings returns all ratings the user has given, newest first.
func (s *EngagementService) ListMyRatings(ctx context.Context, userID uuid.UUID) ([]models.Rating, error) {
	var ratings []models.Rating
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&ratings).Error
	return ratings, err
}

// ListRatings returns a recipe's ratings, newest first, when the recipe is
// visible to the requester.
func (s *EngagementService) ListRatings(ctx context.Context, requester *uuid.UUID, recipeID uuid.UUID) ([]models.Rating, error) {
	if err := s.checkVisible(ctx, requester, recipeID); err != nil {
		return nil, err
	}

	var ratings []models.Rating
	err := s.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Preload("User").
		Order("created_at DESC").
		Find(&ratings).Error
	return ratings, err
}

// DeleteRating removes the user's own rating from a recipe.
func (s *EngagementService) DeleteRating(ctx context.Context, userID, recipeID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Rating{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRatingNotFound
	}
	return nil
}

func (s *EngagementService) averageFor(ctx context.Context, recipeID uuid.UUID) (float64, error) {
	var average float64
	err := s.db.WithContext(ctx).Model(&models.Rating{}).
		Where("recipe_id = ?", recipeID).
		Select("COALESCE(AVG(score), 0)").
		Scan(&average).Error
	return average, err
}

func (s *EngagementService) checkVisible(ctx context.Context, requester *uuid.UUID, recipeID uuid.UUID) error {
	q := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID)
	if requester != nil {
		q = q.Where("published = ? OR author_id = ?", true, *requester)
	} else {
		q = q.Where("published = ?", true)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrRecipeNotFound
	}
	return nil
}
