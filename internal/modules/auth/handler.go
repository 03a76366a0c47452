package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/middleware"
	"github.com/perkstack/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Handler struct {
	svc *Service
	db  *gorm.DB
}

func NewHandler(svc *Service, db *gorm.DB) *Handler {
	return &Handler{svc: svc, db: db}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/register", h.register)

	authed := rg.Group("", middleware.Auth(h.db))
	authed.POST("/auth/logout", h.logout)
	authed.GET("/user", h.currentUser)
	authed.PATCH("/user", h.updateUser)
	authed.PUT("/user", h.updateUser)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, user, err := h.svc.Login(&dto, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"token": token, "user": user})
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.svc.Register(&dto)
	if err != nil {
		if errors.Is(err, ErrAlreadyRegistered) || errors.Is(err, ErrUsernameTaken) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, user)
}

func (h *Handler) logout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.svc.Logout(user.ID, middleware.CurrentSessionID(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "session not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Message(c, "Logged out successfully")
}

func (h *Handler) currentUser(c *gin.Context) {
	response.OK(c, middleware.CurrentUser(c))
}

func (h *Handler) updateUser(c *gin.Context) {
	var dto UpdateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.svc.UpdateProfile(middleware.CurrentUser(c).ID, &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, user)
}
