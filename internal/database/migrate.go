package database

import (
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/models"
)

// Migrate runs the schema migrations for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeImage{},
		&models.Rating{},
		&models.Favorite{},
	)
}
