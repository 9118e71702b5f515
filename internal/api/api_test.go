package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tastebook/backend/internal/api"
	"github.com/tastebook/backend/internal/database"
	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/router"
	"github.com/tastebook/backend/internal/service"
)

const testJWTSecret = "test-secret"

// TestDB bundles the in-memory database with the services the tests use
// directly.
type TestDB struct {
	DB          *gorm.DB
	AuthService *service.AuthService
}

// SetupTestDB opens a fresh in-memory sqlite database with the full
// schema. The single connection keeps the shared memory store alive for
// the whole test.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	return &TestDB{
		DB:          db,
		AuthService: service.NewAuthService(db, testJWTSecret, time.Hour),
	}
}

// setupTestRouter wires the full route table against the test database.
// Redis and S3 stay nil, so rate limiting and uploads are disabled.
func setupTestRouter(t *testing.T, testDB *TestDB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recipeService := service.NewRecipeService(testDB.DB)
	engagementService := service.NewEngagementService(testDB.DB)
	catalogService := service.NewCatalogService(testDB.DB)
	statsService := service.NewStatsService(testDB.DB)
	profileService := service.NewProfileService(testDB.DB)
	storageService := service.NewStorageService(nil)

	var limiter *middleware.RateLimiter
	return router.Setup(router.Handlers{
		Auth:       api.NewAuthHandler(testDB.AuthService),
		Profile:    api.NewProfileHandler(profileService, storageService),
		Recipe:     api.NewRecipeHandler(recipeService, engagementService, storageService),
		Category:   api.NewCategoryHandler(catalogService, recipeService),
		Ingredient: api.NewIngredientHandler(catalogService),
		Favorite:   api.NewFavoriteHandler(engagementService),
		Rating:     api.NewRatingHandler(engagementService),
		Stats:      api.NewStatsHandler(statsService),

		TokenValidator: testDB.AuthService,
		WriteLimiter:   limiter,
	})
}

// CreateTestUserAndToken registers a user through the auth service and
// returns their id and a valid token.
func CreateTestUserAndToken(t *testing.T, testDB *TestDB, username string) (uuid.UUID, string) {
	t.Helper()

	token, user, err := testDB.AuthService.Register(service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return user.ID, token
}

// PerformRequest performs an HTTP request against the test router,
// optionally with a JSON body and bearer token.
func PerformRequest(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
