package page

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/models"
	"github.com/perkstack/core/internal/pkg/pagination"
	"github.com/perkstack/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, editorMW []gin.HandlerFunc) {
	pages := rg.Group("/pages")
	pages.GET("", h.list)
	pages.GET("/get-one", h.getOne)
	pages.GET("/:id", h.get)

	authed := pages.Group("", editorMW...)
	authed.POST("", h.create)
	authed.PUT("/:id", h.update)
	authed.PATCH("/:id", h.update)
	authed.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	pages, meta, err := h.svc.List(q, c.Query("search"), c.Query("status"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, pages, meta)
}

func (h *Handler) getOne(c *gin.Context) {
	id := c.Query("id")
	slug := c.Query("slug")
	if id == "" && slug == "" {
		response.BadRequest(c, "Either ID or slug must be provided")
		return
	}

	var p *models.PageModel
	var err error
	if id != "" {
		p, err = h.svc.GetByID(id)
	} else {
		p, err = h.svc.GetBySlug(slug)
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c, "page not found")
		return
	}
	response.OK(c, p)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c, "page not found")
		return
	}
	response.OK(c, p)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreatePageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Create(&dto)
	if err != nil {
		if errors.Is(err, ErrSlugExists) || errors.Is(err, ErrInvalidStatus) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, p)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdatePageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, ErrSlugExists) || errors.Is(err, ErrInvalidStatus) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c, "page not found")
		return
	}
	response.OK(c, p)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !ok {
		response.NotFound(c, "page not found")
		return
	}
	response.Message(c, "Page deleted successfully")
}
