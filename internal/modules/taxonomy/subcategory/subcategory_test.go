package subcategory

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
	NewHandler(NewService(db)).RegisterRoutes(router.Group("/api"), nil)
	return router, db
}

func seedCategory(t *testing.T, db *gorm.DB, name, slug string) models.CategoryModel {
	t.Helper()
	c := models.CategoryModel{Name: name, Slug: slug}
	require.NoError(t, db.Create(&c).Error)
	return c
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

func TestCreateRequiresExistingCategory(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, "POST", "/api/subcategories", gin.H{
		"categoryId": "ghost",
		"name":       "Orphan",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateHydratesParent(t *testing.T) {
	router, db := newTestRouter(t)
	cat := seedCategory(t, db, "Dining", "dining")

	w := doJSON(t, router, "POST", "/api/subcategories", gin.H{
		"categoryId": cat.ID,
		"name":       "Fine Dining",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	assert.Equal(t, "fine-dining", body["slug"])
	parent := body["category"].(map[string]interface{})
	assert.Equal(t, "Dining", parent["name"])
}

func TestDisplayOrderScopedPerCategory(t *testing.T) {
	router, db := newTestRouter(t)
	catA := seedCategory(t, db, "A", "a")
	catB := seedCategory(t, db, "B", "b")

	w := doJSON(t, router, "POST", "/api/subcategories", gin.H{"categoryId": catA.ID, "name": "A One"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["displayOrder"])

	w = doJSON(t, router, "POST", "/api/subcategories", gin.H{"categoryId": catA.ID, "name": "A Two"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["displayOrder"])

	w = doJSON(t, router, "POST", "/api/subcategories", gin.H{"categoryId": catB.ID, "name": "B One"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["displayOrder"])
}

func TestListFilterByCategory(t *testing.T) {
	router, db := newTestRouter(t)
	catA := seedCategory(t, db, "A", "a")
	catB := seedCategory(t, db, "B", "b")

	for _, seed := range []struct {
		cat  models.CategoryModel
		name string
	}{
		{catA, "One"}, {catA, "Two"}, {catB, "Three"},
	} {
		w := doJSON(t, router, "POST", "/api/subcategories", gin.H{"categoryId": seed.cat.ID, "name": seed.name})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, "GET", "/api/subcategories?categoryId="+catA.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	meta := decode(t, w)["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["totalCount"])
}

func TestMoveToAnotherCategory(t *testing.T) {
	router, db := newTestRouter(t)
	catA := seedCategory(t, db, "A", "a")
	catB := seedCategory(t, db, "B", "b")

	w := doJSON(t, router, "POST", "/api/subcategories", gin.H{"categoryId": catA.ID, "name": "Mover"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = doJSON(t, router, "PATCH", "/api/subcategories/"+id, gin.H{"categoryId": catB.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, catB.ID, decode(t, w)["categoryId"])

	w = doJSON(t, router, "PATCH", "/api/subcategories/"+id, gin.H{"categoryId": "ghost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReorderScopedToCategory(t *testing.T) {
	router, db := newTestRouter(t)
	catA := seedCategory(t, db, "A", "a")
	catB := seedCategory(t, db, "B", "b")

	w := doJSON(t, router, "POST", "/api/subcategories", gin.H{"categoryId": catA.ID, "name": "A One"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	// scoping to the wrong category makes the id set unresolvable
	w = doJSON(t, router, "PATCH", "/api/subcategories/reorder", gin.H{
		"categoryId": catB.ID,
		"items":      []gin.H{{"id": id, "displayOrder": 1}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, "PATCH", "/api/subcategories/reorder", gin.H{
		"categoryId": catA.ID,
		"items":      []gin.H{{"id": id, "displayOrder": 5}},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
