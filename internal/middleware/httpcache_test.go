package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCacheWithoutRedisPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(HTTPCache(nil))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pong": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Cache"))
}

func TestSkipCachePath(t *testing.T) {
	cases := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"/api/leads/export", []string{"/api/leads/export"}, true},
		{"/api/leads", []string{"/api/leads/export"}, false},
		{"/api/leads/export", []string{"/api/leads/*"}, true},
		{"/api/perks", []string{"", " "}, false},
		{"/api/perks", nil, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, skipCachePath(tc.path, tc.patterns), tc.path)
	}
}

func TestCacheableHeaders(t *testing.T) {
	h := http.Header{}
	assert.True(t, cacheableHeaders(h))

	h.Set("Cache-Control", "max-age=30")
	assert.True(t, cacheableHeaders(h))

	h.Set("Cache-Control", "no-store")
	assert.False(t, cacheableHeaders(h))

	h.Set("Cache-Control", "private, max-age=0")
	assert.False(t, cacheableHeaders(h))
}

func TestCaptureWriter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	buffer := &captureWriter{ResponseWriter: c.Writer}
	n, err := buffer.Write([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, `{"a":1}`, string(buffer.body))
	assert.False(t, buffer.overflow)

	// An oversized body passes through but is marked uncacheable.
	_, err = buffer.WriteString(strings.Repeat("x", httpCacheMaxBody))
	require.NoError(t, err)
	assert.True(t, buffer.overflow)
	assert.Equal(t, `{"a":1}`, string(buffer.body))
}
