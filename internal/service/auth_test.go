package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tastebook/backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Category{}, &models.Ingredient{},
		&models.Recipe{}, &models.RecipeIngredient{}, &models.RecipeImage{},
		&models.Rating{}, &models.Favorite{},
	))
	return db
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "secret", time.Hour)

	token, user, err := svc.Register(RegisterInput{
		Username: "maria",
		Email:    "maria@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.ExperienceBeginner, user.ExperienceLevel)
	assert.NotEqual(t, "password123", user.PasswordHash)

	_, _, err = svc.Login("maria@example.com", "password123")
	assert.NoError(t, err)

	_, _, err = svc.Login("maria@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("ghost@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "secret", time.Hour)

	_, _, err := svc.Register(RegisterInput{
		Username: "maria", Email: "maria@example.com", Password: "password123",
	})
	require.NoError(t, err)

	_, _, err = svc.Register(RegisterInput{
		Username: "other", Email: "maria@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, _, err = svc.Register(RegisterInput{
		Username: "maria", Email: "new@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestTokenRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "secret", time.Hour)

	_, user, err := svc.Register(RegisterInput{
		Username: "maria", Email: "maria@example.com", Password: "password123",
	})
	require.NoError(t, err)

	token, err := svc.GenerateToken(user.ID, user.Username)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "maria", claims.Username)

	// A token signed with a different secret must not validate.
	other := NewAuthService(db, "other-secret", time.Hour)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "secret", -time.Minute)

	_, user, err := svc.Register(RegisterInput{
		Username: "maria", Email: "maria@example.com", Password: "password123",
	})
	require.NoError(t, err)

	token, err := svc.GenerateToken(user.ID, user.Username)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
