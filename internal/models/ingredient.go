package models

// Ingredient category tags.
const (
	IngredientProtein   = "protein"
	IngredientVegetable = "vegetable"
	IngredientFruit     = "fruit"
	IngredientGrain     = "grain"
	IngredientDairy     = "dairy"
	IngredientCondiment = "condiment"
	IngredientOther     = "other"
)

// IngredientCategories lists the accepted category tags.
var IngredientCategories = []string{
	IngredientProtein, IngredientVegetable, IngredientFruit,
	IngredientGrain, IngredientDairy, IngredientCondiment, IngredientOther,
}

type Ingredient struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Category string `gorm:"size:50;default:'other'" json:"category"`

	// Annotated per query, not a column.
	UsageCount int64 `gorm:"->;-:migration" json:"usage_count,omitempty"`
}
