package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
)

var (
	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrNotRecipeAuthor     = errors.New("only the author can modify this recipe")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrIngredientNotFound  = errors.New("ingredient not found")
	ErrDuplicateIngredient = errors.New("duplicate ingredient in recipe")
)

const curatedLimit = 10

// recipeColumns annotates every recipe row with its derived fields.
const recipeColumns = "recipes.*, " +
	"recipes.prep_time + recipes.cook_time AS total_time, " +
	"COALESCE((SELECT AVG(ratings.score) FROM ratings WHERE ratings.recipe_id = recipes.id), 0) AS average_rating, " +
	"(SELECT COUNT(*) FROM favorites WHERE favorites.recipe_id = recipes.id) AS favorite_count"

// RecipeService handles recipe queries and mutations.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// RecipeFilter carries the optional list filters. All set filters are
// combined with AND.
type RecipeFilter struct {
	MaxPrepTime  *int
	MaxTotalTime *int
	Difficulties []string
	ServingsMin  *int
	ServingsMax  *int
	Ingredients  []string
	CategorySlug string
	Author       string
	Featured     *bool
	MaxCalories  *int
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Search       string

	// Ordering accepts a sort key with an optional "-" prefix for
	// descending order. Defaults to "-created_at".
	Ordering string

	Page     int
	PageSize int
}

// sortColumns maps accepted ordering keys to SQL expressions.
var sortColumns = map[string]string{
	"created_at":     "recipes.created_at",
	"prep_time":      "recipes.prep_time",
	"cook_time":      "recipes.cook_time",
	"difficulty":     "recipes.difficulty",
	"view_count":     "recipes.view_count",
	"average_rating": "average_rating",
}

// visibleTo scopes recipes to what the requester may see: published ones
// for everybody, plus the requester's own drafts when authenticated.
func (s *RecipeService) visibleTo(requester *uuid.UUID) *gorm.DB {
	q := s.db.Model(&models.Recipe{})
	if requester != nil {
		return q.Where("recipes.published = ? OR recipes.author_id = ?", true, *requester)
	}
	return q.Where("recipes.published = ?", true)
}

func applyFilter(q *gorm.DB, f RecipeFilter) *gorm.DB {
	if f.MaxPrepTime != nil {
		q = q.Where("recipes.prep_time <= ?", *f.MaxPrepTime)
	}
	if f.MaxTotalTime != nil {
		q = q.Where("recipes.prep_time + recipes.cook_time <= ?", *f.MaxTotalTime)
	}
	if len(f.Difficulties) > 0 {
		q = q.Where("recipes.difficulty IN ?", f.Difficulties)
	}
	if f.ServingsMin != nil {
		q = q.Where("recipes.servings >= ?", *f.ServingsMin)
	}
	if f.ServingsMax != nil {
		q = q.Where("recipes.servings <= ?", *f.ServingsMax)
	}
	for _, name := range f.Ingredients {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		// The recipe must contain every listed ingredient fragment.
		q = q.Where("EXISTS (SELECT 1 FROM recipe_ingredients ri "+
			"JOIN ingredients i ON i.id = ri.ingredient_id "+
			"WHERE ri.recipe_id = recipes.id AND LOWER(i.name) LIKE ?)",
			"%"+strings.ToLower(name)+"%")
	}
	if f.CategorySlug != "" {
		q = q.Where("recipes.category_id IN (SELECT id FROM categories WHERE LOWER(slug) = LOWER(?))", f.CategorySlug)
	}
	if f.Author != "" {
		q = q.Where("recipes.author_id IN (SELECT id FROM users WHERE LOWER(username) LIKE ?)",
			"%"+strings.ToLower(f.Author)+"%")
	}
	if f.Featured != nil {
		q = q.Where("recipes.featured = ?", *f.Featured)
	}
	if f.MaxCalories != nil {
		q = q.Where("recipes.calories_per_serving <= ?", *f.MaxCalories)
	}
	if f.CreatedFrom != nil {
		q = q.Where("recipes.created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("recipes.created_at <= ?", *f.CreatedTo)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(recipes.title) LIKE ? OR LOWER(recipes.description) LIKE ? OR LOWER(recipes.instructions) LIKE ?",
			like, like, like)
	}
	return q
}

func orderClause(ordering string) string {
	desc := strings.HasPrefix(ordering, "-")
	key := strings.TrimPrefix(ordering, "-")
	col, ok := sortColumns[key]
	if !ok {
		return "recipes.created_at DESC"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}

// withAssociations preloads the relations shown on recipe payloads.
func withAssociations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Author").
		Preload("Category").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id")
		}).
		Preload("Ingredients.Ingredient").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_images.display_order, recipe_images.created_at")
		}).
		Preload("Ratings").
		Preload("Ratings.User")
}

// List returns the recipes visible to the requester matching the filter,
// plus the total match count for pagination.
func (s *RecipeService) List(ctx context.Context, requester *uuid.UUID, f RecipeFilter) ([]models.Recipe, int64, error) {
	base := func() *gorm.DB {
		return applyFilter(s.visibleTo(requester).WithContext(ctx), f)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var recipes []models.Recipe
	err := withAssociations(base().Select(recipeColumns)).
		Order(orderClause(f.Ordering)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}

	if err := s.markFavorites(ctx, requester, recipes); err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// Get fetches one visible recipe with all associations and derived fields.
func (s *RecipeService) Get(ctx context.Context, requester *uuid.UUID, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := withAssociations(s.visibleTo(requester).WithContext(ctx).Select(recipeColumns)).
		Where("recipes.id = ?", id).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if err := s.markFavorites(ctx, requester, []models.Recipe{recipe}); err != nil {
		return nil, err
	}
	if requester != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Favorite{}).
			Where("user_id = ? AND recipe_id = ?", *requester, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		recipe.IsFavorite = count > 0
	}
	return &recipe, nil
}

// IncrementViews bumps the view counter by one. The increment happens in
// SQL, so concurrent fetches never lose updates.
func (s *RecipeService) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// RecipeIngredientInput is one embedded line item on create/update.
type RecipeIngredientInput struct {
	IngredientID uint   `json:"ingredient_id" binding:"required"`
	Quantity     string `json:"quantity" binding:"required,max=100"`
	Optional     bool   `json:"optional"`
}

// RecipeImageInput is one embedded gallery entry on create/update.
type RecipeImageInput struct {
	URL          string `json:"url" binding:"required,max=255"`
	Caption      string `json:"caption" binding:"max=200"`
	DisplayOrder int    `json:"display_order"`
}

// CreateRecipeInput holds the fields accepted when creating a recipe. The
// author always comes from the authenticated requester.
type CreateRecipeInput struct {
	Title              string                  `json:"title" binding:"required,max=200"`
	Description        string                  `json:"description" binding:"max=1000"`
	CategoryID         *uint                   `json:"category_id"`
	PrepTime           int                     `json:"prep_time" binding:"required,min=1"`
	CookTime           int                     `json:"cook_time" binding:"min=0"`
	Difficulty         string                  `json:"difficulty" binding:"omitempty,oneof=very_easy easy medium hard very_hard"`
	Servings           int                     `json:"servings" binding:"omitempty,min=1,max=50"`
	Instructions       string                  `json:"instructions" binding:"required"`
	CaloriesPerServing *int                    `json:"calories_per_serving" binding:"omitempty,min=0"`
	ImageURL           string                  `json:"image_url" binding:"max=255"`
	Published          bool                    `json:"published"`
	Ingredients        []RecipeIngredientInput `json:"ingredients" binding:"omitempty,dive"`
	Images             []RecipeImageInput      `json:"images" binding:"omitempty,dive"`
}

// UpdateRecipeInput uses pointers so omitted fields stay untouched. A
// supplied Ingredients or Images list replaces the existing set entirely.
type UpdateRecipeInput struct {
	Title              *string                  `json:"title" binding:"omitempty,max=200"`
	Description        *string                  `json:"description" binding:"omitempty,max=1000"`
	CategoryID         *uint                    `json:"category_id"`
	PrepTime           *int                     `json:"prep_time" binding:"omitempty,min=1"`
	CookTime           *int                     `json:"cook_time" binding:"omitempty,min=0"`
	Difficulty         *string                  `json:"difficulty" binding:"omitempty,oneof=very_easy easy medium hard very_hard"`
	Servings           *int                     `json:"servings" binding:"omitempty,min=1,max=50"`
	Instructions       *string                  `json:"instructions"`
	CaloriesPerServing *int                     `json:"calories_per_serving" binding:"omitempty,min=0"`
	ImageURL           *string                  `json:"image_url" binding:"omitempty,max=255"`
	Published          *bool                    `json:"published"`
	Ingredients        *[]RecipeIngredientInput `json:"ingredients" binding:"omitempty,dive"`
	Images             *[]RecipeImageInput      `json:"images" binding:"omitempty,dive"`
}

// Create inserts the recipe and its embedded ingredients and images in a
// single transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in CreateRecipeInput) (*models.Recipe, error) {
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Title:              in.Title,
		Description:        in.Description,
		AuthorID:           authorID,
		CategoryID:         in.CategoryID,
		PrepTime:           in.PrepTime,
		CookTime:           in.CookTime,
		Difficulty:         in.Difficulty,
		Servings:           in.Servings,
		Instructions:       in.Instructions,
		CaloriesPerServing: in.CaloriesPerServing,
		ImageURL:           in.ImageURL,
		Published:          in.Published,
	}
	if recipe.Difficulty == "" {
		recipe.Difficulty = models.DifficultyEasy
	}
	if recipe.Servings == 0 {
		recipe.Servings = 4
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := createLineItems(tx, recipe.ID, in.Ingredients); err != nil {
			return err
		}
		return createGalleryImages(tx, recipe.ID, in.Images)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, &authorID, recipe.ID)
}

// Update mutates the recipe if the requester is its author. When a new
// ingredient or image list is supplied the old set is dropped and the new
// one inserted, all inside one transaction.
func (s *RecipeService) Update(ctx context.Context, requesterID, id uuid.UUID, in UpdateRecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != requesterID {
		return nil, ErrNotRecipeAuthor
	}
	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.CategoryID != nil {
		updates["category_id"] = *in.CategoryID
	}
	if in.PrepTime != nil {
		updates["prep_time"] = *in.PrepTime
	}
	if in.CookTime != nil {
		updates["cook_time"] = *in.CookTime
	}
	if in.Difficulty != nil {
		updates["difficulty"] = *in.Difficulty
	}
	if in.Servings != nil {
		updates["servings"] = *in.Servings
	}
	if in.Instructions != nil {
		updates["instructions"] = *in.Instructions
	}
	if in.CaloriesPerServing != nil {
		updates["calories_per_serving"] = *in.CaloriesPerServing
	}
	if in.ImageURL != nil {
		updates["image_url"] = *in.ImageURL
	}
	if in.Published != nil {
		updates["published"] = *in.Published
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
				return err
			}
		}
		if in.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
			if err := createLineItems(tx, id, *in.Ingredients); err != nil {
				return err
			}
		}
		if in.Images != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeImage{}).Error; err != nil {
				return err
			}
			if err := createGalleryImages(tx, id, *in.Images); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, &requesterID, id)
}

// Delete removes the recipe and, through the cascade constraints, its
// ingredients, images, ratings and favorites.
func (s *RecipeService) Delete(ctx context.Context, requesterID, id uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	if recipe.AuthorID != requesterID {
		return ErrNotRecipeAuthor
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&models.RecipeIngredient{}, &models.RecipeImage{},
			&models.Rating{}, &models.Favorite{},
		} {
			if err := tx.Where("recipe_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
}

// Featured returns up to 10 featured recipes visible to the requester.
func (s *RecipeService) Featured(ctx context.Context, requester *uuid.UUID) ([]models.Recipe, error) {
	featured := true
	return s.curated(ctx, requester, RecipeFilter{Featured: &featured, Ordering: "-created_at"})
}

// MostViewed returns the 10 most viewed visible recipes.
func (s *RecipeService) MostViewed(ctx context.Context, requester *uuid.UUID) ([]models.Recipe, error) {
	return s.curated(ctx, requester, RecipeFilter{Ordering: "-view_count"})
}

// TopRated returns the 10 best rated visible recipes that have at least
// one rating.
func (s *RecipeService) TopRated(ctx context.Context, requester *uuid.UUID) ([]models.Recipe, error) {
	base := s.visibleTo(requester).WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM ratings WHERE ratings.recipe_id = recipes.id)")

	var recipes []models.Recipe
	err := withAssociations(base.Select(recipeColumns)).
		Order("average_rating DESC").
		Limit(curatedLimit).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	if err := s.markFavorites(ctx, requester, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// Mine returns all of the requester's recipes, drafts included.
func (s *RecipeService) Mine(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	var recipes []models.Recipe
	base := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("recipes.author_id = ?", userID)
	err := withAssociations(base.Select(recipeColumns)).
		Order("recipes.created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	if err := s.markFavorites(ctx, &userID, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// ByIngredients returns visible recipes containing all of the given
// ingredient name fragments.
func (s *RecipeService) ByIngredients(ctx context.Context, requester *uuid.UUID, names []string) ([]models.Recipe, error) {
	recipes, _, err := s.List(ctx, requester, RecipeFilter{Ingredients: names, PageSize: 100})
	return recipes, err
}

func (s *RecipeService) curated(ctx context.Context, requester *uuid.UUID, f RecipeFilter) ([]models.Recipe, error) {
	base := applyFilter(s.visibleTo(requester).WithContext(ctx), f)

	var recipes []models.Recipe
	err := withAssociations(base.Select(recipeColumns)).
		Order(orderClause(f.Ordering)).
		Limit(curatedLimit).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	if err := s.markFavorites(ctx, requester, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// markFavorites sets IsFavorite on each recipe for the requester.
func (s *RecipeService) markFavorites(ctx context.Context, requester *uuid.UUID, recipes []models.Recipe) error {
	if requester == nil || len(recipes) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
	}

	var favored []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", *requester, ids).
		Pluck("recipe_id", &favored).Error
	if err != nil {
		return err
	}

	favSet := make(map[uuid.UUID]bool, len(favored))
	for _, id := range favored {
		favSet[id] = true
	}
	for i := range recipes {
		recipes[i].IsFavorite = favSet[recipes[i].ID]
	}
	return nil
}

func (s *RecipeService) checkCategory(ctx context.Context, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ? AND active = ?", *categoryID, true).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func createLineItems(tx *gorm.DB, recipeID uuid.UUID, items []RecipeIngredientInput) error {
	for _, item := range items {
		var count int64
		if err := tx.Model(&models.Ingredient{}).Where("id = ?", item.IngredientID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: id %d", ErrIngredientNotFound, item.IngredientID)
		}

		line := models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.IngredientID,
			Quantity:     item.Quantity,
			Optional:     item.Optional,
		}
		if err := tx.Create(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateIngredient
			}
			return err
		}
	}
	return nil
}

func createGalleryImages(tx *gorm.DB, recipeID uuid.UUID, images []RecipeImageInput) error {
	for _, img := range images {
		entry := models.RecipeImage{
			RecipeID:     recipeID,
			URL:          img.URL,
			Caption:      img.Caption,
			DisplayOrder: img.DisplayOrder,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}
