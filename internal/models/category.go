package models

// Category groups recipes by cuisine or style (italian, vegan, ...).
type Category struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"size:255" json:"image_url"`
	Slug        string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Active      bool   `gorm:"default:true" json:"active"`

	// Annotated per query, not a column.
	RecipeCount int64 `gorm:"->;-:migration" json:"recipe_count"`
}
