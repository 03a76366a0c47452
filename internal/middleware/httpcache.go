package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	httpCachePrefix  = "perkstack:http_cache:"
	httpCacheTTL     = 15 * time.Second
	httpCacheMaxBody = 1 << 20
)

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body"`
}

// captureWriter tees the response body so a successful render can be
// stored. Bodies over the cap pass through uncached.
type captureWriter struct {
	gin.ResponseWriter
	body     []byte
	overflow bool
}

func (w *captureWriter) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *captureWriter) capture(data []byte) {
	if w.overflow || len(data) == 0 {
		return
	}
	if len(w.body)+len(data) > httpCacheMaxBody {
		w.overflow = true
		return
	}
	w.body = append(w.body, data...)
}

// HTTPCache serves anonymous GET responses from Redis for a short TTL.
// Authenticated requests bypass the cache so editors always read their own
// writes, and any successful mutation purges the whole cache namespace.
func HTTPCache(rdb *redis.Client, skipPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		if c.Request.Method != http.MethodGet {
			c.Next()
			status := c.Writer.Status()
			if status >= 200 && status < 300 {
				go purgeHTTPCache(context.Background(), rdb)
			}
			return
		}

		if IsAuthenticated(c) || skipCachePath(c.Request.URL.Path, skipPaths) {
			c.Next()
			return
		}

		key := httpCachePrefix + c.Request.URL.RequestURI()
		if hit, ok := readCachedResponse(c.Request.Context(), rdb, key); ok {
			c.Header("X-Cache", "hit")
			c.Data(hit.Status, hit.ContentType, hit.Body)
			c.Abort()
			return
		}

		c.Header("X-Cache", "miss")
		buffer := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = buffer
		c.Next()

		if c.Writer.Status() != http.StatusOK || buffer.overflow || len(buffer.body) == 0 {
			return
		}
		if !cacheableHeaders(c.Writer.Header()) {
			return
		}

		raw, err := json.Marshal(cachedResponse{
			Status:      http.StatusOK,
			ContentType: c.Writer.Header().Get("Content-Type"),
			Body:        buffer.body,
		})
		if err != nil {
			return
		}
		rdb.Set(c.Request.Context(), key, raw, httpCacheTTL)
	}
}

func readCachedResponse(ctx context.Context, rdb *redis.Client, key string) (cachedResponse, bool) {
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return cachedResponse{}, false
	}
	var hit cachedResponse
	if err := json.Unmarshal(raw, &hit); err != nil || len(hit.Body) == 0 {
		return cachedResponse{}, false
	}
	if hit.Status == 0 {
		hit.Status = http.StatusOK
	}
	if hit.ContentType == "" {
		hit.ContentType = "application/json; charset=utf-8"
	}
	return hit, true
}

func purgeHTTPCache(ctx context.Context, rdb *redis.Client) {
	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, httpCachePrefix+"*", 200).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			rdb.Del(ctx, keys...)
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

func skipCachePath(path string, patterns []string) bool {
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasSuffix(p, "*") {
			if strings.HasPrefix(path, strings.TrimSuffix(p, "*")) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

func cacheableHeaders(headers http.Header) bool {
	cc := strings.ToLower(headers.Get("Cache-Control"))
	return !strings.Contains(cc, "no-cache") &&
		!strings.Contains(cc, "no-store") &&
		!strings.Contains(cc, "private")
}
