package main

import (
	"flag"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tastebook/backend/config"
	"github.com/tastebook/backend/internal/database"
	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/service"
	"github.com/tastebook/backend/pkg/logger"
)

var categories = []string{
	"Breakfast", "Lunch", "Dinner", "Desserts", "Soups",
	"Salads", "Drinks", "Baking", "Snacks", "Vegetarian",
}

var ingredients = []models.Ingredient{
	{Name: "Chicken breast", Category: models.IngredientProtein},
	{Name: "Ground beef", Category: models.IngredientProtein},
	{Name: "Eggs", Category: models.IngredientProtein},
	{Name: "Salmon", Category: models.IngredientProtein},
	{Name: "Onion", Category: models.IngredientVegetable},
	{Name: "Garlic", Category: models.IngredientVegetable},
	{Name: "Tomato", Category: models.IngredientVegetable},
	{Name: "Carrot", Category: models.IngredientVegetable},
	{Name: "Potato", Category: models.IngredientVegetable},
	{Name: "Spinach", Category: models.IngredientVegetable},
	{Name: "Lemon", Category: models.IngredientFruit},
	{Name: "Apple", Category: models.IngredientFruit},
	{Name: "Rice", Category: models.IngredientGrain},
	{Name: "Pasta", Category: models.IngredientGrain},
	{Name: "Flour", Category: models.IngredientGrain},
	{Name: "Milk", Category: models.IngredientDairy},
	{Name: "Butter", Category: models.IngredientDairy},
	{Name: "Parmesan", Category: models.IngredientDairy},
	{Name: "Olive oil", Category: models.IngredientCondiment},
	{Name: "Salt", Category: models.IngredientCondiment},
	{Name: "Black pepper", Category: models.IngredientCondiment},
	{Name: "Soy sauce", Category: models.IngredientCondiment},
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		logger.Fatal("failed to init logger", zap.Error(err))
	}
	defer logger.Sync()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	if err := seed(db); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("seed data loaded",
		zap.Int("categories", len(categories)),
		zap.Int("ingredients", len(ingredients)))
}

// seed inserts the reference data, skipping rows that already exist so
// the command stays safe to re-run.
func seed(db *gorm.DB) error {
	for _, name := range categories {
		category := models.Category{
			Name:   name,
			Slug:   service.Slugify(name),
			Active: true,
		}
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&category).Error
		if err != nil {
			return err
		}
	}

	for _, ingredient := range ingredients {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredient).Error
		if err != nil {
			return err
		}
	}
	return nil
}
