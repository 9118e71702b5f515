package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Difficulty levels, ordered easiest to hardest.
const (
	DifficultyVeryEasy = "very_easy"
	DifficultyEasy     = "easy"
	DifficultyMedium   = "medium"
	DifficultyHard     = "hard"
	DifficultyVeryHard = "very_hard"
)

// Difficulties lists the accepted difficulty values.
var Difficulties = []string{
	DifficultyVeryEasy, DifficultyEasy, DifficultyMedium,
	DifficultyHard, DifficultyVeryHard,
}

type Recipe struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"size:1000" json:"description"`

	AuthorID   uuid.UUID `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author     *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`

	// Times are minutes. PrepTime must be >= 1, CookTime >= 0.
	PrepTime int `gorm:"not null" json:"prep_time"`
	CookTime int `gorm:"not null;default:0" json:"cook_time"`

	Difficulty         string `gorm:"size:15;default:'easy'" json:"difficulty"`
	Servings           int    `gorm:"not null;default:4" json:"servings"`
	Instructions       string `gorm:"type:text;not null" json:"instructions"`
	CaloriesPerServing *int   `json:"calories_per_serving,omitempty"`
	ImageURL           string `gorm:"size:255" json:"image_url"`

	Published bool  `gorm:"default:false;index" json:"published"`
	Featured  bool  `gorm:"default:false" json:"featured"`
	ViewCount int64 `gorm:"default:0" json:"view_count"`

	Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	Images      []RecipeImage      `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Ratings     []Rating           `gorm:"constraint:OnDelete:CASCADE" json:"ratings,omitempty"`

	// Annotated per query, not columns.
	TotalTime     int     `gorm:"->;-:migration" json:"total_time"`
	AverageRating float64 `gorm:"->;-:migration" json:"average_rating"`
	FavoriteCount int64   `gorm:"->;-:migration" json:"favorite_count"`
	IsFavorite    bool    `gorm:"-" json:"is_favorite"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeIngredient is a line item on a recipe: one ingredient with a
// free-form quantity ("2 cups", "500g", "to taste").
type RecipeIngredient struct {
	ID           uint        `gorm:"primarykey" json:"id"`
	RecipeID     uuid.UUID   `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_ingredient" json:"-"`
	IngredientID uint        `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"ingredient,omitempty"`
	Quantity     string      `gorm:"size:100;not null" json:"quantity"`
	Optional     bool        `gorm:"default:false" json:"optional"`
}

// RecipeImage is a gallery entry, ordered by (display_order, created_at).
type RecipeImage struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"uploaded_at"`
	RecipeID     uuid.UUID `gorm:"type:varchar(36);not null;index" json:"-"`
	URL          string    `gorm:"size:255;not null" json:"url"`
	Caption      string    `gorm:"size:200" json:"caption"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
}
