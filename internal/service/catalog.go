package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
)

var ErrIngredientNameTaken = errors.New("ingredient name already exists")

// categoryColumns annotates each category with its published recipe count.
const categoryColumns = "categories.*, " +
	"(SELECT COUNT(*) FROM recipes WHERE recipes.category_id = categories.id AND recipes.published = TRUE) AS recipe_count"

// ingredientColumns annotates each ingredient with the number of recipes
// using it.
const ingredientColumns = "ingredients.*, " +
	"(SELECT COUNT(*) FROM recipe_ingredients WHERE recipe_ingredients.ingredient_id = ingredients.id) AS usage_count"

// CatalogService manages the category and ingredient reference data.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListCategories returns the active categories ordered by name, each with
// its published recipe count.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Model(&models.Category{}).
		Select(categoryColumns).
		Where("categories.active = ?", true).
		Order("categories.name").
		Find(&categories).Error
	return categories, err
}

// GetCategory returns one active category by id or slug.
func (s *CatalogService) GetCategory(ctx context.Context, idOrSlug string) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Model(&models.Category{}).
		Select(categoryColumns).
		Where("categories.active = ? AND (CAST(categories.id AS TEXT) = ? OR categories.slug = ?)",
			true, idOrSlug, strings.ToLower(idOrSlug)).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a category name.
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// IngredientFilter narrows the ingredient listing.
type IngredientFilter struct {
	Search   string
	Category string
}

// ListIngredients returns ingredients matching the filter, ordered by
// name, each annotated with its usage count.
func (s *CatalogService) ListIngredients(ctx context.Context, f IngredientFilter) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Model(&models.Ingredient{}).Select(ingredientColumns)
	if f.Search != "" {
		q = q.Where("LOWER(ingredients.name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.Category != "" {
		q = q.Where("ingredients.category = ?", f.Category)
	}

	var ingredients []models.Ingredient
	err := q.Order("ingredients.name").Find(&ingredients).Error
	return ingredients, err
}

// MostUsed returns the 20 ingredients appearing in the most recipes.
// Unused ingredients never make the list.
func (s *CatalogService) MostUsed(ctx context.Context) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
		Select(ingredientColumns).
		Where("EXISTS (SELECT 1 FROM recipe_ingredients WHERE recipe_ingredients.ingredient_id = ingredients.id)").
		Order("usage_count DESC, ingredients.name").
		Limit(20).
		Find(&ingredients).Error
	return ingredients, err
}

// CreateIngredientInput holds the fields for registering an ingredient.
type CreateIngredientInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Category string `json:"category" binding:"omitempty,oneof=protein vegetable fruit grain dairy condiment other"`
}

// CreateIngredient registers a new ingredient. Names are unique.
func (s *CatalogService) CreateIngredient(ctx context.Context, in CreateIngredientInput) (*models.Ingredient, error) {
	ingredient := models.Ingredient{
		Name:     strings.TrimSpace(in.Name),
		Category: in.Category,
	}
	if ingredient.Category == "" {
		ingredient.Category = models.IngredientOther
	}

	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrIngredientNameTaken
		}
		return nil, err
	}
	return &ingredient, nil
}
