package section

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/models"
	"github.com/perkstack/core/internal/pkg/optional"
	"github.com/perkstack/core/internal/pkg/ordering"
	"github.com/perkstack/core/internal/pkg/response"
	"gorm.io/gorm"
)

var ErrPageNotFound = errors.New("page does not exist")

type CreateSectionDTO struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
}

type UpdateSectionDTO struct {
	Title       *string                `json:"title"`
	Description optional.Field[string] `json:"description"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) pageExists(pageID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.PageModel{}).Where("id = ?", pageID).Count(&count).Error
	return count > 0, err
}

// ListByPage returns a page's sections in display order. Callers get a
// bare array; section listings carry no pagination metadata.
func (s *Service) ListByPage(pageID string) ([]models.SectionModel, error) {
	exists, err := s.pageExists(pageID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPageNotFound
	}

	var sections []models.SectionModel
	err = s.db.Where("page_id = ?", pageID).
		Order("display_order ASC, created_at DESC").
		Find(&sections).Error
	return sections, err
}

func (s *Service) GetByID(id string) (*models.SectionModel, error) {
	var sec models.SectionModel
	if err := s.db.First(&sec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sec, nil
}

func (s *Service) Create(pageID string, dto *CreateSectionDTO) (*models.SectionModel, error) {
	exists, err := s.pageExists(pageID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPageNotFound
	}

	// Display order is scoped to the owning page.
	next, err := ordering.NextDisplayOrder(
		s.db.Model(&models.SectionModel{}).Where("page_id = ?", pageID))
	if err != nil {
		return nil, err
	}

	sec := models.SectionModel{
		PageID:       pageID,
		Title:        dto.Title,
		Description:  dto.Description,
		DisplayOrder: next,
	}
	return &sec, s.db.Create(&sec).Error
}

func (s *Service) Update(id string, dto *UpdateSectionDTO) (*models.SectionModel, error) {
	sec, err := s.GetByID(id)
	if err != nil || sec == nil {
		return sec, err
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
	}
	if dto.Description.Defined {
		updates["description"] = dto.Description.Value
	}
	if len(updates) > 0 {
		if err := s.db.Model(sec).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) (bool, error) {
	res := s.db.Delete(&models.SectionModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Reorder applies position updates scoped to one page.
func (s *Service) Reorder(pageID string, items []ordering.Item) error {
	exists, err := s.pageExists(pageID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrPageNotFound
	}
	scope := func(tx *gorm.DB) *gorm.DB {
		return tx.Where("page_id = ?", pageID)
	}
	return ordering.Reorder(s.db, &models.SectionModel{}, scope, items)
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, editorMW []gin.HandlerFunc) {
	pages := rg.Group("/pages")
	pages.GET("/:id/sections", h.listByPage)

	pagesAuthed := pages.Group("", editorMW...)
	pagesAuthed.POST("/:id/sections", h.create)
	pagesAuthed.PATCH("/:id/sections/reorder", h.reorder)

	sections := rg.Group("/sections", editorMW...)
	sections.PUT("/:id", h.update)
	sections.PATCH("/:id", h.update)
	sections.DELETE("/:id", h.delete)
}

func (h *Handler) listByPage(c *gin.Context) {
	sections, err := h.svc.ListByPage(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.List(c, sections)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateSectionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sec, err := h.svc.Create(c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, sec)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateSectionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sec, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if sec == nil {
		response.NotFound(c, "section not found")
		return
	}
	response.OK(c, sec)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !ok {
		response.NotFound(c, "section not found")
		return
	}
	response.Message(c, "Section deleted successfully")
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
	if err := h.svc.Reorder(c.Param("id"), dto.Items); err != nil {
		if errors.Is(err, ErrPageNotFound) || errors.Is(err, ordering.ErrSetMismatch) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Message(c, "Sections reordered successfully")
}
