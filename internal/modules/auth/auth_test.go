package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/database"
	"github.com/perkstack/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	router := gin.New()
	NewHandler(NewService(db), db).RegisterRoutes(router.Group("/api"))
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func register(t *testing.T, router *gin.Engine) map[string]interface{} {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/auth/register", "", gin.H{
		"username": "founder",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return decode(t, w)
}

func login(t *testing.T, router *gin.Engine, username, password string) (string, *httptest.ResponseRecorder) {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/auth/login", "", gin.H{
		"username": username,
		"password": password,
	})
	if w.Code != http.StatusOK {
		return "", w
	}
	return decode(t, w)["token"].(string), w
}

func TestRegisterFirstUserIsAdmin(t *testing.T) {
	router, _ := newTestRouter(t)

	body := register(t, router)
	assert.Equal(t, models.RoleAdmin, body["role"])
	_, hasPassword := body["password"]
	assert.False(t, hasPassword, "password hash must never be serialized")
}

func TestRegisterOnlyOnce(t *testing.T) {
	router, _ := newTestRouter(t)
	register(t, router)

	w := doJSON(t, router, "POST", "/api/auth/register", "", gin.H{
		"username": "second",
		"password": "another-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	router, _ := newTestRouter(t)
	register(t, router)

	token, w := login(t, router, "founder", "correct-horse-battery")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, token)

	_, w = login(t, router, "founder", "wrong")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, w = login(t, router, "nobody", "wrong")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCurrentUser(t *testing.T) {
	router, _ := newTestRouter(t)
	register(t, router)
	token, _ := login(t, router, "founder", "correct-horse-battery")

	w := doJSON(t, router, "GET", "/api/user", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "founder", decode(t, w)["username"])

	w = doJSON(t, router, "GET", "/api/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	router, _ := newTestRouter(t)
	register(t, router)
	token, _ := login(t, router, "founder", "correct-horse-battery")

	w := doJSON(t, router, "PATCH", "/api/user", token, gin.H{
		"name":     "Founder",
		"password": "a-brand-new-password",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Founder", decode(t, w)["name"])

	_, w = login(t, router, "founder", "correct-horse-battery")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	token, _ = login(t, router, "founder", "a-brand-new-password")
	assert.NotEmpty(t, token)
}

func TestLogoutRevokesSession(t *testing.T) {
	router, _ := newTestRouter(t)
	register(t, router)
	token, _ := login(t, router, "founder", "correct-horse-battery")

	w := doJSON(t, router, "POST", "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
