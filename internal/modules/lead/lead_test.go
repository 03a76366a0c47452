package lead

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
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

func seedPerk(t *testing.T, db *gorm.DB, method models.RedemptionMethod, slug string) models.PerkModel {
	t.Helper()
	p := models.PerkModel{
		Title:            "Seeded " + slug,
		Slug:             slug,
		RedemptionMethod: method,
		Location:         models.LocationGlobal,
		Status:           "active",
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCapture(t *testing.T) {
	router, db := newTestRouter(t)
	perk := seedPerk(t, db, models.RedeemFormSubmission, "gym-trial")

	w := postJSON(t, router, "/api/leads", gin.H{
		"perkId": perk.ID,
		"data":   gin.H{"email": "user@example.com", "name": "Sam"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, perk.ID, body["perkId"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "user@example.com", data["email"])
}

func TestCaptureUnknownPerk(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(t, router, "/api/leads", gin.H{
		"perkId": "no-such-perk",
		"data":   gin.H{"email": "user@example.com"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCaptureWrongRedemptionMethod(t *testing.T) {
	router, db := newTestRouter(t)
	perk := seedPerk(t, db, models.RedeemCouponCode, "coupon-perk")

	w := postJSON(t, router, "/api/leads", gin.H{
		"perkId": perk.ID,
		"data":   gin.H{"email": "user@example.com"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCaptureIPFallback(t *testing.T) {
	_, db := newTestRouter(t)
	perk := seedPerk(t, db, models.RedeemFormSubmission, "form-perk")

	svc := NewService(db)
	l, err := svc.Capture(&CreateLeadDTO{
		PerkID: perk.ID,
		Data:   map[string]interface{}{"email": "x@example.com"},
	}, "  ")
	require.NoError(t, err)
	assert.Equal(t, models.UnknownIP, l.IP)
}

func TestListFilterByPerk(t *testing.T) {
	router, db := newTestRouter(t)
	perkA := seedPerk(t, db, models.RedeemFormSubmission, "a")
	perkB := seedPerk(t, db, models.RedeemFormSubmission, "b")

	svc := NewService(db)
	for _, p := range []models.PerkModel{perkA, perkA, perkB} {
		_, err := svc.Capture(&CreateLeadDTO{
			PerkID: p.ID,
			Data:   map[string]interface{}{"email": "x@example.com"},
		}, "1.2.3.4")
		require.NoError(t, err)
	}

	req := httptest.NewRequest("GET", "/api/leads?perkId="+perkA.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["totalCount"])
}

func TestExportCSV(t *testing.T) {
	router, db := newTestRouter(t)
	perk := seedPerk(t, db, models.RedeemFormSubmission, "csv-perk")

	svc := NewService(db)
	_, err := svc.Capture(&CreateLeadDTO{
		PerkID: perk.ID,
		Data:   map[string]interface{}{"email": "x@example.com"},
	}, "1.2.3.4")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/leads/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	records, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"id", "perkId", "perkTitle", "data", "ip", "createdAt"}, records[0])
	assert.Equal(t, perk.ID, records[1][1])
	assert.Equal(t, "Seeded csv-perk", records[1][2])
	assert.Contains(t, records[1][3], "x@example.com")
	assert.Equal(t, "1.2.3.4", records[1][4])
}

func TestDeleteLead(t *testing.T) {
	router, db := newTestRouter(t)
	perk := seedPerk(t, db, models.RedeemFormSubmission, "del-perk")

	svc := NewService(db)
	l, err := svc.Capture(&CreateLeadDTO{
		PerkID: perk.ID,
		Data:   map[string]interface{}{"email": "x@example.com"},
	}, "1.2.3.4")
	require.NoError(t, err)

	req := httptest.NewRequest("DELETE", "/api/leads/"+l.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("DELETE", "/api/leads/"+l.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// brokenWriter fails every write, standing in for a client that hangs up
// mid-download.
type brokenWriter struct {
	header http.Header
}

func (b *brokenWriter) Header() http.Header {
	if b.header == nil {
		b.header = http.Header{}
	}
	return b.header
}

func (b *brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func (b *brokenWriter) WriteHeader(int) {}

func TestExportWriteFailureIsRecorded(t *testing.T) {
	_, db := newTestRouter(t)
	perk := seedPerk(t, db, models.RedeemFormSubmission, "broken-export")

	svc := NewService(db)
	_, err := svc.Capture(&CreateLeadDTO{
		PerkID: perk.ID,
		Data:   map[string]interface{}{"email": "gone@example.com"},
	}, "1.2.3.4")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(&brokenWriter{})
	c.Request = httptest.NewRequest("GET", "/api/leads/export", nil)

	NewHandler(svc).export(c)
	require.NotEmpty(t, c.Errors)
	assert.Contains(t, c.Errors.Last().Error(), "lead export aborted")
}
