package perk

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/models"
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
	perks := rg.Group("/perks")
	perks.GET("", h.list)
	perks.GET("/get-one", h.getOne)
	perks.GET("/:id", h.get)

	authed := perks.Group("", editorMW...)
	authed.POST("", h.create)
	authed.PATCH("/reorder", h.reorder)
	authed.PUT("/:id", h.update)
	authed.PATCH("/:id", h.update)
	authed.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	filters := ListFilters{
		Search:           c.Query("search"),
		CategoryID:       c.Query("categoryId"),
		SubcategoryID:    c.Query("subcategoryId"),
		Location:         c.Query("location"),
		Status:           c.Query("status"),
		RedemptionMethod: c.Query("redemptionMethod"),
		Featured:         c.Query("featured"),
		Sort:             c.Query("sort"),
	}
	perks, meta, err := h.svc.List(q, filters)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, perks, meta)
}

// getOne resolves a perk by id or slug query parameter.
func (h *Handler) getOne(c *gin.Context) {
	id := c.Query("id")
	slug := c.Query("slug")
	if id == "" && slug == "" {
		response.BadRequest(c, "Either ID or slug must be provided")
		return
	}

	var p *models.PerkModel
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
		response.NotFound(c, "perk not found")
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
		response.NotFound(c, "perk not found")
		return
	}
	response.OK(c, p)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreatePerkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Create(&dto)
	if err != nil {
		if isValidationError(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, p)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdatePerkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		if isValidationError(err) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c, "perk not found")
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
		response.NotFound(c, "perk not found")
		return
	}
	response.Message(c, "Perk deleted successfully")
}

type reorderDTO struct {
	Items []ordering.Item `json:"items" binding:"required,min=1,dive"`
}

func (h *Handler) reorder(c *gin.Context) {
	var dto reorderDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.Reorder(dto.Items); err != nil {
		if errors.Is(err, ordering.ErrSetMismatch) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Message(c, "Perks reordered successfully")
}

func isValidationError(err error) bool {
	for _, target := range []error{
		ErrSlugExists, ErrLeadFormSlugExists,
		ErrCategoryNotFound, ErrSubcategoryNotFound, ErrSubcategoryMismatch,
		ErrInvalidLocation, ErrInvalidMethod,
		ErrMissingAffiliateLink, ErrMissingCouponCode, ErrMissingLeadForm,
		ErrPayloadMismatch, ErrDateWindow,
		models.ErrLeadFormFieldID, models.ErrLeadFormFieldType,
		models.ErrRedirectURLRequired, models.ErrPartnerEmailRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
