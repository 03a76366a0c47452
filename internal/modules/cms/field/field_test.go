package field

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

func seedPage(t *testing.T, db *gorm.DB, slug string) models.PageModel {
	t.Helper()
	p := models.PageModel{Title: "Page " + slug, Slug: slug, Status: models.PageDraft}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedSection(t *testing.T, db *gorm.DB, pageID, title string) models.SectionModel {
	t.Helper()
	s := models.SectionModel{PageID: pageID, Title: title}
	require.NoError(t, db.Create(&s).Error)
	return s
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

func TestCreateDefaultsToText(t *testing.T) {
	router, db := newTestRouter(t)
	page := seedPage(t, db, "home")

	w := doJSON(t, router, "POST", "/api/pages/"+page.ID+"/fields", gin.H{
		"key":   "headline",
		"value": "Welcome",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	assert.Equal(t, "text", body["type"])
	assert.Equal(t, float64(1), body["displayOrder"])
	_, hasRendered := body["rendered"]
	assert.False(t, hasRendered, "plain text carries no rendering")
}

func TestRichTextRendered(t *testing.T) {
	router, db := newTestRouter(t)
	page := seedPage(t, db, "home")

	w := doJSON(t, router, "POST", "/api/pages/"+page.ID+"/fields", gin.H{
		"key":   "body",
		"value": "# Hello\n\nSome **bold** copy.",
		"type":  "rich_text",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	rendered := decode(t, w)["rendered"].(string)
	assert.Contains(t, rendered, "<h1")
	assert.Contains(t, rendered, "<strong>bold</strong>")
}

func TestInvalidType(t *testing.T) {
	router, db := newTestRouter(t)
	page := seedPage(t, db, "home")

	w := doJSON(t, router, "POST", "/api/pages/"+page.ID+"/fields", gin.H{
		"key":  "x",
		"type": "hologram",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateUnknownPage(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doJSON(t, router, "POST", "/api/pages/ghost/fields", gin.H{"key": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSectionMustBelongToPage(t *testing.T) {
	router, db := newTestRouter(t)
	pageA := seedPage(t, db, "a")
	pageB := seedPage(t, db, "b")
	section := seedSection(t, db, pageB.ID, "Hero")

	w := doJSON(t, router, "POST", "/api/pages/"+pageA.ID+"/fields", gin.H{
		"key":       "x",
		"sectionId": section.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListWithSectionFilter(t *testing.T) {
	router, db := newTestRouter(t)
	page := seedPage(t, db, "home")
	section := seedSection(t, db, page.ID, "Hero")

	w := doJSON(t, router, "POST", "/api/pages/"+page.ID+"/fields", gin.H{"key": "loose"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, "POST", "/api/pages/"+page.ID+"/fields", gin.H{
		"key":       "scoped",
		"sectionId": section.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "GET", "/api/pages/"+page.ID+"/fields", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 2)

	w = doJSON(t, router, "GET", "/api/pages/"+page.ID+"/fields?sectionId="+section.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "scoped", data[0].(map[string]interface{})["key"])
}

func TestUpdateMoveToSectionAndClear(t *testing.T) {
	router, db := newTestRouter(t)
	page := seedPage(t, db, "home")
	section := seedSection(t, db, page.ID, "Hero")

	w := doJSON(t, router, "POST", "/api/pages/"+page.ID+"/fields", gin.H{"key": "movable"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = doJSON(t, router, "PATCH", "/api/fields/"+id, gin.H{"sectionId": section.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, section.ID, decode(t, w)["sectionId"])

	w = doJSON(t, router, "PATCH", "/api/fields/"+id, gin.H{"sectionId": nil})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["sectionId"])
}

func TestReorderFields(t *testing.T) {
	router, db := newTestRouter(t)
	page := seedPage(t, db, "home")

	ids := make([]string, 2)
	for i, key := range []string{"first", "second"} {
		w := doJSON(t, router, "POST", "/api/pages/"+page.ID+"/fields", gin.H{"key": key})
		require.Equal(t, http.StatusCreated, w.Code)
		ids[i] = decode(t, w)["id"].(string)
	}

	w := doJSON(t, router, "PATCH", "/api/pages/"+page.ID+"/fields/reorder", gin.H{"items": []gin.H{
		{"id": ids[0], "displayOrder": 2},
		{"id": ids[1], "displayOrder": 1},
	}})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/pages/"+page.ID+"/fields", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "second", data[0].(map[string]interface{})["key"])
}

func TestDeleteField(t *testing.T) {
	router, db := newTestRouter(t)
	page := seedPage(t, db, "home")

	w := doJSON(t, router, "POST", "/api/pages/"+page.ID+"/fields", gin.H{"key": "doomed"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = doJSON(t, router, "DELETE", "/api/fields/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, "DELETE", "/api/fields/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
