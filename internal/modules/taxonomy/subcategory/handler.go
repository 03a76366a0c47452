package subcategory

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/pkg/ordering"
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
	subs := rg.Group("/subcategories")
	subs.GET("", h.list)
	subs.GET("/:id", h.get)

	authed := subs.Group("", editorMW...)
	authed.POST("", h.create)
	authed.PATCH("/reorder", h.reorder)
	authed.PUT("/:id", h.update)
	authed.PATCH("/:id", h.update)
	authed.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	subs, meta, err := h.svc.List(q, c.Query("search"), c.Query("categoryId"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, subs, meta)
}

func (h *Handler) get(c *gin.Context) {
	sub, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if sub == nil {
		response.NotFound(c, "subcategory not found")
		return
	}
	response.OK(c, sub)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateSubcategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sub, err := h.svc.Create(&dto)
	if err != nil {
		if errors.Is(err, ErrSlugExists) || errors.Is(err, ErrCategoryNotFound) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, sub)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateSubcategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sub, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, ErrSlugExists) || errors.Is(err, ErrCategoryNotFound) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if sub == nil {
		response.NotFound(c, "subcategory not found")
		return
	}
	response.OK(c, sub)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !ok {
		response.NotFound(c, "subcategory not found")
		return
	}
	response.Message(c, "Subcategory deleted successfully")
}

type reorderDTO struct {
	CategoryID string          `json:"categoryId"`
	Items      []ordering.Item `json:"items" binding:"required,min=1,dive"`
}

func (h *Handler) reorder(c *gin.Context) {
	var dto reorderDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.Reorder(dto.CategoryID, dto.Items); err != nil {
		if errors.Is(err, ordering.ErrSetMismatch) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Message(c, "Subcategories reordered successfully")
}
