package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/models"
	"github.com/perkstack/core/internal/pkg/jwt"
	"github.com/perkstack/core/internal/pkg/response"
	sessionpkg "github.com/perkstack/core/internal/pkg/session"
	"gorm.io/gorm"
)

const (
	ContextKeyUser = "auth_user"
	ContextKeySID  = "session_id"
)

// Auth enforces JWT authentication and loads the user row into the request
// context. Requests without a valid session-backed token get 401.
func Auth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, sid, err := resolveUser(db, extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUser, user)
		c.Set(ContextKeySID, sid)
		sessionpkg.Touch(db, user.ID, sid)
		c.Next()
	}
}

// OptionalAuth loads the user when a valid token is present, but never
// blocks the request.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, sid, err := resolveUser(db, extractToken(c)); err == nil {
			c.Set(ContextKeyUser, user)
			c.Set(ContextKeySID, sid)
			sessionpkg.Touch(db, user.ID, sid)
		}
		c.Next()
	}
}

// RequireRole is the single authorization gate for mutating operations:
// no authenticated user yields 401, an authenticated user whose role is
// outside the allowed set yields 403.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Unauthorized(c)
			return
		}
		if !allowed[user.Role] {
			response.Forbidden(c)
			return
		}
		c.Next()
	}
}

// RequireEditor gates on the roles allowed to mutate content.
func RequireEditor() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin, models.RoleContentEditor)
}

func resolveUser(db *gorm.DB, rawToken string) (*models.UserModel, string, error) {
	token := NormalizeToken(rawToken)
	if token == "" {
		return nil, "", errors.New("token is required")
	}

	claims, err := jwt.Parse(token)
	if err != nil {
		return nil, "", err
	}
	active, err := sessionpkg.IsActive(db, claims.UserID, claims.SessionID)
	if err != nil {
		return nil, "", err
	}
	if !active {
		return nil, "", errors.New("session expired or revoked")
	}

	var user models.UserModel
	if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		return nil, "", err
	}
	return &user, claims.SessionID, nil
}

// CurrentUser extracts the authenticated user from the context, or nil.
func CurrentUser(c *gin.Context) *models.UserModel {
	v, _ := c.Get(ContextKeyUser)
	user, _ := v.(*models.UserModel)
	return user
}

// CurrentSessionID extracts the authenticated session ID from the context.
func CurrentSessionID(c *gin.Context) string {
	v, _ := c.Get(ContextKeySID)
	id, _ := v.(string)
	return id
}

// IsAuthenticated reports whether the request carries a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUser(c) != nil
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips an optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
