package media

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	router := gin.New()
	NewHandler(NewService(db)).RegisterRoutes(router.Group("/api"), nil)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
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

func TestCreateRequiresURLAndFilename(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, "POST", "/api/media", gin.H{"filename": "a.png"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "POST", "/api/media", gin.H{
		"url":      "https://cdn.example.com/a.png",
		"filename": "a.png",
		"size":     1234,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(1234), decode(t, w)["size"])
}

func TestListSearchByFilename(t *testing.T) {
	router := newTestRouter(t)

	for _, name := range []string{"hero-banner.png", "logo.svg", "banner-mobile.png"} {
		w := doJSON(t, router, "POST", "/api/media", gin.H{
			"url":      "https://cdn.example.com/" + name,
			"filename": name,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, "GET", "/api/media?search=banner", nil)
	require.Equal(t, http.StatusOK, w.Code)
	meta := decode(t, w)["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["totalCount"])
}

func TestUpdateAndDelete(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, "POST", "/api/media", gin.H{
		"url":      "https://cdn.example.com/a.png",
		"filename": "a.png",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = doJSON(t, router, "PATCH", "/api/media/"+id, gin.H{"alt": "A hero image"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A hero image", decode(t, w)["alt"])

	w = doJSON(t, router, "DELETE", "/api/media/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, "GET", "/api/media/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
