package field

import (
	"bytes"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/models"
	"github.com/perkstack/core/internal/pkg/optional"
	"github.com/perkstack/core/internal/pkg/ordering"
	"github.com/perkstack/core/internal/pkg/response"
	"github.com/yuin/goldmark"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound    = errors.New("page does not exist")
	ErrSectionNotFound = errors.New("section does not exist")
	ErrSectionMismatch = errors.New("section does not belong to the stated page")
	ErrInvalidType     = errors.New("invalid content field type")
)

type CreateFieldDTO struct {
	SectionID *string                `json:"sectionId"`
	Key       string                 `json:"key"  binding:"required"`
	Value     string                 `json:"value"`
	Type      string                 `json:"type"`
	Metadata  map[string]interface{} `json:"metadata"`
}

type UpdateFieldDTO struct {
	SectionID optional.Field[string] `json:"sectionId"`
	Key       *string                `json:"key"`
	Value     *string                `json:"value"`
	Type      *string                `json:"type"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// fieldResponse augments the stored field with a server-side markdown
// rendering for rich_text values.
type fieldResponse struct {
	models.ContentFieldModel
	Rendered string `json:"rendered,omitempty"`
}

var markdown = goldmark.New()

func toResponse(f models.ContentFieldModel) fieldResponse {
	out := fieldResponse{ContentFieldModel: f}
	if f.Type == "rich_text" && f.Value != "" {
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(f.Value), &buf); err == nil {
			out.Rendered = buf.String()
		}
	}
	return out
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

// checkSection verifies the section exists and belongs to the page.
func (s *Service) checkSection(pageID, sectionID string) error {
	var sec models.SectionModel
	if err := s.db.First(&sec, "id = ?", sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSectionNotFound
		}
		return err
	}
	if sec.PageID != pageID {
		return ErrSectionMismatch
	}
	return nil
}

// ListByPage returns a page's content fields in display order, optionally
// restricted to one section. Bare array, no pagination metadata.
func (s *Service) ListByPage(pageID, sectionID string) ([]models.ContentFieldModel, error) {
	exists, err := s.pageExists(pageID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPageNotFound
	}

	tx := s.db.Where("page_id = ?", pageID).
		Order("display_order ASC, created_at DESC")
	if sectionID != "" {
		tx = tx.Where("section_id = ?", sectionID)
	}
	var fields []models.ContentFieldModel
	err = tx.Find(&fields).Error
	return fields, err
}

func (s *Service) GetByID(id string) (*models.ContentFieldModel, error) {
	var f models.ContentFieldModel
	if err := s.db.First(&f, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (s *Service) Create(pageID string, dto *CreateFieldDTO) (*models.ContentFieldModel, error) {
	exists, err := s.pageExists(pageID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPageNotFound
	}
	if dto.SectionID != nil {
		if err := s.checkSection(pageID, *dto.SectionID); err != nil {
			return nil, err
		}
	}

	fieldType := dto.Type
	if fieldType == "" {
		fieldType = "text"
	}
	if !models.ValidContentFieldType(fieldType) {
		return nil, ErrInvalidType
	}

	next, err := ordering.NextDisplayOrder(
		s.db.Model(&models.ContentFieldModel{}).Where("page_id = ?", pageID))
	if err != nil {
		return nil, err
	}

	f := models.ContentFieldModel{
		PageID:       pageID,
		SectionID:    dto.SectionID,
		Key:          dto.Key,
		Value:        dto.Value,
		Type:         fieldType,
		Metadata:     dto.Metadata,
		DisplayOrder: next,
	}
	return &f, s.db.Create(&f).Error
}

func (s *Service) Update(id string, dto *UpdateFieldDTO) (*models.ContentFieldModel, error) {
	f, err := s.GetByID(id)
	if err != nil || f == nil {
		return f, err
	}

	updates := map[string]interface{}{}
	if dto.SectionID.Defined {
		if dto.SectionID.Value != nil {
			if err := s.checkSection(f.PageID, *dto.SectionID.Value); err != nil {
				return nil, err
			}
		}
		updates["section_id"] = dto.SectionID.Value
	}
	if dto.Key != nil {
		updates["key"] = *dto.Key
	}
	if dto.Value != nil {
		updates["value"] = *dto.Value
	}
	if dto.Type != nil {
		if !models.ValidContentFieldType(*dto.Type) {
			return nil, ErrInvalidType
		}
		updates["type"] = *dto.Type
	}
	if dto.Metadata != nil {
		updates["metadata"] = models.JSONMap(dto.Metadata)
	}
	if len(updates) > 0 {
		if err := s.db.Model(f).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) (bool, error) {
	res := s.db.Delete(&models.ContentFieldModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

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
	return ordering.Reorder(s.db, &models.ContentFieldModel{}, scope, items)
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, editorMW []gin.HandlerFunc) {
	pages := rg.Group("/pages")
	pages.GET("/:id/fields", h.listByPage)

	pagesAuthed := pages.Group("", editorMW...)
	pagesAuthed.POST("/:id/fields", h.create)
	pagesAuthed.PATCH("/:id/fields/reorder", h.reorder)

	fields := rg.Group("/fields", editorMW...)
	fields.PUT("/:id", h.update)
	fields.PATCH("/:id", h.update)
	fields.DELETE("/:id", h.delete)
}

func (h *Handler) listByPage(c *gin.Context) {
	fields, err := h.svc.ListByPage(c.Param("id"), c.Query("sectionId"))
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	items := make([]fieldResponse, len(fields))
	for i, f := range fields {
		items[i] = toResponse(f)
	}
	response.List(c, items)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateFieldDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	f, err := h.svc.Create(c.Param("id"), &dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrPageNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, ErrSectionNotFound), errors.Is(err, ErrSectionMismatch), errors.Is(err, ErrInvalidType):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, toResponse(*f))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateFieldDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	f, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, ErrSectionNotFound) || errors.Is(err, ErrSectionMismatch) || errors.Is(err, ErrInvalidType) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if f == nil {
		response.NotFound(c, "content field not found")
		return
	}
	response.OK(c, toResponse(*f))
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !ok {
		response.NotFound(c, "content field not found")
		return
	}
	response.Message(c, "Content field deleted successfully")
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
	response.Message(c, "Content fields reordered successfully")
}
