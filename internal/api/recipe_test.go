package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebook/backend/internal/models"
)

func createTestIngredient(t *testing.T, testDB *TestDB, name string) uint {
	t.Helper()
	ingredient := models.Ingredient{Name: name, Category: models.IngredientOther}
	require.NoError(t, testDB.DB.Create(&ingredient).Error)
	return ingredient.ID
}

func createTestRecipe(t *testing.T, router *gin.Engine, token string, overrides map[string]interface{}) map[string]interface{} {
	t.Helper()

	payload := map[string]interface{}{
		"title":        "Lentil Soup",
		"description":  "Hearty winter soup",
		"prep_time":    15,
		"cook_time":    45,
		"difficulty":   "easy",
		"servings":     4,
		"instructions": "Chop, simmer, season.",
		"published":    true,
	}
	for k, v := range overrides {
		payload[k] = v
	}

	w := PerformRequest(router, "POST", "/api/v1/recipes", payload, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody(t, w)
}

func TestCreateRecipeComputesTotalTime(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	recipe := createTestRecipe(t, router, token, map[string]interface{}{
		"prep_time": 20,
		"cook_time": 40,
	})

	assert.Equal(t, float64(60), recipe["total_time"])
	assert.Equal(t, float64(0), recipe["average_rating"])
	assert.Equal(t, float64(0), recipe["favorite_count"])
}

func TestCreateRecipeWithIngredients(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	onion := createTestIngredient(t, testDB, "Onion")
	lentils := createTestIngredient(t, testDB, "Lentils")

	recipe := createTestRecipe(t, router, token, map[string]interface{}{
		"ingredients": []map[string]interface{}{
			{"ingredient_id": onion, "quantity": "1 large"},
			{"ingredient_id": lentils, "quantity": "200 g", "optional": false},
		},
	})

	items := recipe["ingredients"].([]interface{})
	require.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "1 large", first["quantity"])
	assert.Equal(t, "Onion", first["ingredient"].(map[string]interface{})["name"])
}

func TestCreateRecipeRejectsDuplicateIngredient(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	onion := createTestIngredient(t, testDB, "Onion")

	w := PerformRequest(router, "POST", "/api/v1/recipes", map[string]interface{}{
		"title":        "Onion Soup",
		"prep_time":    10,
		"cook_time":    30,
		"instructions": "Cook the onions twice.",
		"ingredients": []map[string]interface{}{
			{"ingredient_id": onion, "quantity": "1"},
			{"ingredient_id": onion, "quantity": "2"},
		},
	}, token)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateReplacesIngredientList(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	onion := createTestIngredient(t, testDB, "Onion")
	garlic := createTestIngredient(t, testDB, "Garlic")
	carrot := createTestIngredient(t, testDB, "Carrot")

	recipe := createTestRecipe(t, router, token, map[string]interface{}{
		"ingredients": []map[string]interface{}{
			{"ingredient_id": onion, "quantity": "1"},
			{"ingredient_id": garlic, "quantity": "2 cloves"},
		},
	})
	id := recipe["id"].(string)

	w := PerformRequest(router, "PATCH", "/api/v1/recipes/"+id, map[string]interface{}{
		"ingredients": []map[string]interface{}{
			{"ingredient_id": carrot, "quantity": "3"},
		},
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decodeBody(t, w)
	items := updated["ingredients"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Carrot", items[0].(map[string]interface{})["ingredient"].(map[string]interface{})["name"])

	var count int64
	require.NoError(t, testDB.DB.Model(&models.RecipeIngredient{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDraftVisibility(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, authorToken := CreateTestUserAndToken(t, testDB, "author")
	_, otherToken := CreateTestUserAndToken(t, testDB, "visitor")

	draft := createTestRecipe(t, router, authorToken, map[string]interface{}{
		"title":     "Secret Draft",
		"published": false,
	})
	id := draft["id"].(string)

	// Anonymous listing does not include the draft.
	w := PerformRequest(router, "GET", "/api/v1/recipes", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeBody(t, w)["total"])

	// Neither does the detail endpoint, for anyone but the author.
	w = PerformRequest(router, "GET", "/api/v1/recipes/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = PerformRequest(router, "GET", "/api/v1/recipes/"+id, nil, otherToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The author sees it in list and detail.
	w = PerformRequest(router, "GET", "/api/v1/recipes", nil, authorToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["total"])
	w = PerformRequest(router, "GET", "/api/v1/recipes/"+id, nil, authorToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateRequiresAuthorship(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, authorToken := CreateTestUserAndToken(t, testDB, "author")
	_, otherToken := CreateTestUserAndToken(t, testDB, "visitor")

	recipe := createTestRecipe(t, router, authorToken, nil)
	id := recipe["id"].(string)

	w := PerformRequest(router, "PATCH", "/api/v1/recipes/"+id, map[string]interface{}{
		"title": "Hijacked",
	}, otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = PerformRequest(router, "DELETE", "/api/v1/recipes/"+id, nil, otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDetailIncrementsViewCount(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	recipe := createTestRecipe(t, router, token, nil)
	id := recipe["id"].(string)

	w := PerformRequest(router, "GET", "/api/v1/recipes/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["view_count"])

	w = PerformRequest(router, "GET", "/api/v1/recipes/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["view_count"])
}

func TestFavoriteToggle(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, authorToken := CreateTestUserAndToken(t, testDB, "author")
	_, fanToken := CreateTestUserAndToken(t, testDB, "fan")

	recipe := createTestRecipe(t, router, authorToken, nil)
	id := recipe["id"].(string)

	w := PerformRequest(router, "POST", "/api/v1/recipes/"+id+"/toggle_favorite", nil, fanToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["favorited"])

	w = PerformRequest(router, "GET", "/api/v1/recipes/"+id, nil, fanToken)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["is_favorite"])
	assert.Equal(t, float64(1), body["favorite_count"])

	// Toggling again removes the mark.
	w = PerformRequest(router, "POST", "/api/v1/recipes/"+id+"/toggle_favorite", nil, fanToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["favorited"])

	var count int64
	require.NoError(t, testDB.DB.Model(&models.Favorite{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRatingUpsertAndAverage(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, authorToken := CreateTestUserAndToken(t, testDB, "author")
	_, fanToken := CreateTestUserAndToken(t, testDB, "fan")

	recipe := createTestRecipe(t, router, authorToken, nil)
	id := recipe["id"].(string)

	w := PerformRequest(router, "POST", "/api/v1/recipes/"+id+"/rate", map[string]interface{}{
		"score":   4,
		"comment": "Very good",
	}, fanToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(4), decodeBody(t, w)["average_rating"])

	// Rating again revises the score instead of adding a second row.
	w = PerformRequest(router, "POST", "/api/v1/recipes/"+id+"/rate", map[string]interface{}{
		"score": 2,
	}, fanToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["average_rating"])

	var count int64
	require.NoError(t, testDB.DB.Model(&models.Rating{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuthorCannotRateOwnRecipe(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	recipe := createTestRecipe(t, router, token, nil)
	id := recipe["id"].(string)

	w := PerformRequest(router, "POST", "/api/v1/recipes/"+id+"/rate", map[string]interface{}{
		"score": 5,
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRatingScoreBounds(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, authorToken := CreateTestUserAndToken(t, testDB, "author")
	_, fanToken := CreateTestUserAndToken(t, testDB, "fan")

	recipe := createTestRecipe(t, router, authorToken, nil)
	id := recipe["id"].(string)

	for _, score := range []int{0, 6} {
		w := PerformRequest(router, "POST", "/api/v1/recipes/"+id+"/rate", map[string]interface{}{
			"score": score,
		}, fanToken)
		assert.Equal(t, http.StatusBadRequest, w.Code, "score %d", score)
	}
}

func TestListFilters(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	createTestRecipe(t, router, token, map[string]interface{}{
		"title":     "Quick Salad",
		"prep_time": 10,
		"cook_time": 0,
	})
	createTestRecipe(t, router, token, map[string]interface{}{
		"title":      "Slow Stew",
		"prep_time":  30,
		"cook_time":  180,
		"difficulty": "hard",
	})

	w := PerformRequest(router, "GET", "/api/v1/recipes?max_total_time=60", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, float64(1), body["total"])
	items := body["items"].([]interface{})
	assert.Equal(t, "Quick Salad", items[0].(map[string]interface{})["title"])

	w = PerformRequest(router, "GET", "/api/v1/recipes?difficulty=hard", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["total"])

	w = PerformRequest(router, "GET", "/api/v1/recipes?search=stew", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["total"])
}

func TestListByIngredients(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	onion := createTestIngredient(t, testDB, "Onion")
	garlic := createTestIngredient(t, testDB, "Garlic")

	createTestRecipe(t, router, token, map[string]interface{}{
		"title": "Both",
		"ingredients": []map[string]interface{}{
			{"ingredient_id": onion, "quantity": "1"},
			{"ingredient_id": garlic, "quantity": "2"},
		},
	})
	createTestRecipe(t, router, token, map[string]interface{}{
		"title": "Only Onion",
		"ingredients": []map[string]interface{}{
			{"ingredient_id": onion, "quantity": "1"},
		},
	})

	// Both fragments must match, so only one recipe qualifies.
	w := PerformRequest(router, "GET", "/api/v1/recipes/by_ingredients?ingredients=onion,garlic", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeBody(t, w)["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Both", items[0].(map[string]interface{})["title"])
}

func TestPagination(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	for i := 0; i < 5; i++ {
		createTestRecipe(t, router, token, map[string]interface{}{
			"title": fmt.Sprintf("Recipe %d", i),
		})
	}

	w := PerformRequest(router, "GET", "/api/v1/recipes?page=2&page_size=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(5), body["total"])
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, float64(3), body["total_pages"])
	assert.Len(t, body["items"].([]interface{}), 2)
}

func TestCuratedLists(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, authorToken := CreateTestUserAndToken(t, testDB, "author")
	_, fanToken := CreateTestUserAndToken(t, testDB, "fan")

	plain := createTestRecipe(t, router, authorToken, map[string]interface{}{"title": "Plain"})
	rated := createTestRecipe(t, router, authorToken, map[string]interface{}{"title": "Rated"})

	w := PerformRequest(router, "POST", "/api/v1/recipes/"+rated["id"].(string)+"/rate",
		map[string]interface{}{"score": 5}, fanToken)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, testDB.DB.Model(&models.Recipe{}).
		Where("id = ?", plain["id"].(string)).
		Update("featured", true).Error)

	// Only recipes with at least one rating qualify as top rated.
	w = PerformRequest(router, "GET", "/api/v1/recipes/top_rated", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeBody(t, w)["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Rated", items[0].(map[string]interface{})["title"])

	w = PerformRequest(router, "GET", "/api/v1/recipes/featured", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	items = decodeBody(t, w)["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Plain", items[0].(map[string]interface{})["title"])
}

func TestMineIncludesDrafts(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, token := CreateTestUserAndToken(t, testDB, "author")

	createTestRecipe(t, router, token, map[string]interface{}{"title": "Published"})
	createTestRecipe(t, router, token, map[string]interface{}{"title": "Draft", "published": false})

	w := PerformRequest(router, "GET", "/api/v1/recipes/mine", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["items"].([]interface{}), 2)
}

func TestDeleteCascades(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	_, authorToken := CreateTestUserAndToken(t, testDB, "author")
	_, fanToken := CreateTestUserAndToken(t, testDB, "fan")

	onion := createTestIngredient(t, testDB, "Onion")
	recipe := createTestRecipe(t, router, authorToken, map[string]interface{}{
		"ingredients": []map[string]interface{}{
			{"ingredient_id": onion, "quantity": "1"},
		},
	})
	id := recipe["id"].(string)

	w := PerformRequest(router, "POST", "/api/v1/recipes/"+id+"/rate",
		map[string]interface{}{"score": 4}, fanToken)
	require.Equal(t, http.StatusOK, w.Code)
	w = PerformRequest(router, "POST", "/api/v1/recipes/"+id+"/toggle_favorite", nil, fanToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = PerformRequest(router, "DELETE", "/api/v1/recipes/"+id, nil, authorToken)
	require.Equal(t, http.StatusNoContent, w.Code)

	for _, model := range []interface{}{
		&models.Recipe{}, &models.RecipeIngredient{}, &models.Rating{}, &models.Favorite{},
	} {
		var count int64
		require.NoError(t, testDB.DB.Model(model).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	}
}
