package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebook/backend/internal/models"
)

func createTestCategory(t *testing.T, testDB *TestDB, name, slug string) uint {
	t.Helper()
	category := models.Category{Name: name, Slug: slug, Active: true}
	require.NoError(t, testDB.DB.Create(&category).Error)
	return category.ID
}

func TestListCategoriesWithRecipeCounts(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	soups := createTestCategory(t, testDB, "Soups", "soups")
	createTestCategory(t, testDB, "Desserts", "desserts")

	createTestRecipe(t, router, token, map[string]interface{}{"category_id": soups})
	createTestRecipe(t, router, token, map[string]interface{}{"category_id": soups, "published": false})

	w := PerformRequest(router, "GET", "/api/v1/categories", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeBody(t, w)["items"].([]interface{})
	require.Len(t, items, 2)

	counts := map[string]float64{}
	for _, item := range items {
		category := item.(map[string]interface{})
		counts[category["slug"].(string)] = category["recipe_count"].(float64)
	}
	// Drafts do not count toward a category's total.
	assert.Equal(t, float64(1), counts["soups"])
	assert.Equal(t, float64(0), counts["desserts"])
}

func TestGetCategoryBySlug(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	createTestCategory(t, testDB, "Soups", "soups")

	w := PerformRequest(router, "GET", "/api/v1/categories/soups", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Soups", decodeBody(t, w)["name"])

	w = PerformRequest(router, "GET", "/api/v1/categories/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoryRecipes(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	soups := createTestCategory(t, testDB, "Soups", "soups")
	createTestCategory(t, testDB, "Desserts", "desserts")

	createTestRecipe(t, router, token, map[string]interface{}{
		"title": "Lentil Soup", "category_id": soups,
	})
	createTestRecipe(t, router, token, map[string]interface{}{"title": "Uncategorized"})

	w := PerformRequest(router, "GET", "/api/v1/categories/soups/recipes", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, float64(1), body["total"])
	items := body["items"].([]interface{})
	assert.Equal(t, "Lentil Soup", items[0].(map[string]interface{})["title"])
}

func TestCreateRecipeWithUnknownCategory(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	w := PerformRequest(router, "POST", "/api/v1/recipes", map[string]interface{}{
		"title":        "Orphan",
		"prep_time":    5,
		"instructions": "Mix.",
		"category_id":  999,
	}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngredientEndpoints(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	// Creating needs a token.
	w := PerformRequest(router, "POST", "/api/v1/ingredients", map[string]interface{}{
		"name": "Onion",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = PerformRequest(router, "POST", "/api/v1/ingredients", map[string]interface{}{
		"name":     "Onion",
		"category": "vegetable",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	// Names are unique.
	w = PerformRequest(router, "POST", "/api/v1/ingredients", map[string]interface{}{
		"name": "Onion",
	}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = PerformRequest(router, "POST", "/api/v1/ingredients", map[string]interface{}{
		"name": "Garlic",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "other", decodeBody(t, w)["category"])

	w = PerformRequest(router, "GET", "/api/v1/ingredients?search=oni", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeBody(t, w)["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Onion", items[0].(map[string]interface{})["name"])

	w = PerformRequest(router, "GET", "/api/v1/ingredients?category=vegetable", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["items"].([]interface{}), 1)
}

func TestMostUsedIngredients(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	onion := createTestIngredient(t, testDB, "Onion")
	garlic := createTestIngredient(t, testDB, "Garlic")
	createTestIngredient(t, testDB, "Saffron")

	createTestRecipe(t, router, token, map[string]interface{}{
		"title": "A",
		"ingredients": []map[string]interface{}{
			{"ingredient_id": onion, "quantity": "1"},
			{"ingredient_id": garlic, "quantity": "1"},
		},
	})
	createTestRecipe(t, router, token, map[string]interface{}{
		"title": "B",
		"ingredients": []map[string]interface{}{
			{"ingredient_id": onion, "quantity": "2"},
		},
	})

	// Saffron is unused, so only two ingredients qualify.
	w := PerformRequest(router, "GET", "/api/v1/ingredients/most_used", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeBody(t, w)["items"].([]interface{})
	require.Len(t, items, 2)

	first := items[0].(map[string]interface{})
	assert.Equal(t, "Onion", first["name"])
	assert.Equal(t, float64(2), first["usage_count"])
}
