package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegister(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)

	w := PerformRequest(router, "POST", "/api/v1/auth/register", map[string]interface{}{
		"username": "maria",
		"email":    "maria@example.com",
		"password": "password123",
	}, "")

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "maria", user["username"])
	assert.Equal(t, "beginner", user["experience_level"])
	assert.NotContains(t, user, "password_hash")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)

	payload := map[string]interface{}{
		"username": "maria",
		"email":    "maria@example.com",
		"password": "password123",
	}
	w := PerformRequest(router, "POST", "/api/v1/auth/register", payload, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	payload["username"] = "other"
	w = PerformRequest(router, "POST", "/api/v1/auth/register", payload, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)

	w := PerformRequest(router, "POST", "/api/v1/auth/register", map[string]interface{}{
		"username": "ab",
		"email":    "not-an-email",
		"password": "short",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	fields := body["fields"].(map[string]interface{})
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestLogin(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)
	CreateTestUserAndToken(t, testDB, "maria")

	w := PerformRequest(router, "POST", "/api/v1/auth/login", map[string]interface{}{
		"email":    "maria@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["token"])

	w = PerformRequest(router, "POST", "/api/v1/auth/login", map[string]interface{}{
		"email":    "maria@example.com",
		"password": "wrongpassword",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	testDB := SetupTestDB(t)
	router := setupTestRouter(t, testDB)

	w := PerformRequest(router, "GET", "/api/v1/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = PerformRequest(router, "GET", "/api/v1/me", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
