package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/pkg/response"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader  = "X-Idempotency-Key"
	idempotencePrefix  = "perkstack:idempotence:"
	idempotenceTTL     = 60 * time.Second
	idempotencePending = "0"
	idempotenceDone    = "1"
)

// Idempotence rejects a repeat of an in-flight or recently completed
// mutation with 409. Clients may pin a request identity with the
// X-Idempotency-Key header; otherwise it is derived from the request
// fingerprint. Failed requests release their key so retries go through.
func Idempotence(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		if skipIdempotencePath(c.Request.URL.Path) {
			c.Next()
			return
		}

		key, err := idempotenceKey(c)
		if err != nil || key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		redisKey := idempotencePrefix + key

		if _, err := rdb.Get(ctx, redisKey).Result(); err == nil {
			response.Conflict(c, "duplicate request, please retry later")
			return
		} else if !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}

		if err := rdb.Set(ctx, redisKey, idempotencePending, idempotenceTTL).Err(); err != nil {
			c.Next()
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			rdb.Set(ctx, redisKey, idempotenceDone, redis.KeepTTL)
			return
		}
		rdb.Del(ctx, redisKey)
	}
}

// Login retries with the same credentials are legitimate and must not
// collide with each other.
func skipIdempotencePath(path string) bool {
	p := strings.TrimRight(strings.ToLower(strings.TrimSpace(path)), "/")
	return p == "/api/auth/login"
}

func idempotenceKey(c *gin.Context) (string, error) {
	if hdr := strings.TrimSpace(c.GetHeader(idempotencyHeader)); hdr != "" {
		return hdr, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	token := NormalizeToken(c.GetHeader("Authorization"))
	ip := c.ClientIP()
	if len(body) == 0 && ip == "" && token == "" {
		return "", nil
	}

	raw := strings.Join([]string{
		c.Request.Method,
		c.Request.URL.String(),
		string(body),
		ip,
		c.Request.UserAgent(),
		token,
	}, "|")
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:]), nil
}
