package media

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/models"
	"github.com/perkstack/core/internal/pkg/pagination"
	"github.com/perkstack/core/internal/pkg/response"
	"gorm.io/gorm"
)

type CreateMediaDTO struct {
	URL      string  `json:"url"      binding:"required"`
	PublicID string  `json:"publicId"`
	Filename string  `json:"filename" binding:"required"`
	Size     int64   `json:"size"`
	Alt      *string `json:"alt"`
	Caption  *string `json:"caption"`
}

type UpdateMediaDTO struct {
	URL      *string `json:"url"`
	PublicID *string `json:"publicId"`
	Filename *string `json:"filename"`
	Size     *int64  `json:"size"`
	Alt      *string `json:"alt"`
	Caption  *string `json:"caption"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(q pagination.Query, search string) ([]models.MediaModel, response.Meta, error) {
	tx := s.db.Model(&models.MediaModel{})
	if search != "" {
		pattern := "%" + search + "%"
		tx = tx.Where("filename LIKE ? OR alt LIKE ?", pattern, pattern)
	}
	tx = tx.Order("created_at DESC")

	var items []models.MediaModel
	meta, err := pagination.Paginate(tx, q, &items)
	return items, meta, err
}

func (s *Service) GetByID(id string) (*models.MediaModel, error) {
	var m models.MediaModel
	if err := s.db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (s *Service) Create(dto *CreateMediaDTO) (*models.MediaModel, error) {
	m := models.MediaModel{
		URL:      dto.URL,
		PublicID: dto.PublicID,
		Filename: dto.Filename,
		Size:     dto.Size,
		Alt:      dto.Alt,
		Caption:  dto.Caption,
	}
	return &m, s.db.Create(&m).Error
}

func (s *Service) Update(id string, dto *UpdateMediaDTO) (*models.MediaModel, error) {
	m, err := s.GetByID(id)
	if err != nil || m == nil {
		return m, err
	}

	updates := map[string]interface{}{}
	if dto.URL != nil {
		updates["url"] = *dto.URL
	}
	if dto.PublicID != nil {
		updates["public_id"] = *dto.PublicID
	}
	if dto.Filename != nil {
		updates["filename"] = *dto.Filename
	}
	if dto.Size != nil {
		updates["size"] = *dto.Size
	}
	if dto.Alt != nil {
		updates["alt"] = *dto.Alt
	}
	if dto.Caption != nil {
		updates["caption"] = *dto.Caption
	}
	if len(updates) > 0 {
		if err := s.db.Model(m).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) (bool, error) {
	res := s.db.Delete(&models.MediaModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, editorMW []gin.HandlerFunc) {
	media := rg.Group("/media", editorMW...)
	media.GET("", h.list)
	media.GET("/:id", h.get)
	media.POST("", h.create)
	media.PUT("/:id", h.update)
	media.PATCH("/:id", h.update)
	media.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, meta, err := h.svc.List(pagination.FromContext(c), c.Query("search"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, meta)
}

func (h *Handler) get(c *gin.Context) {
	m, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if m == nil {
		response.NotFound(c, "media not found")
		return
	}
	response.OK(c, m)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateMediaDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	m, err := h.svc.Create(&dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, m)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateMediaDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	m, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if m == nil {
		response.NotFound(c, "media not found")
		return
	}
	response.OK(c, m)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !ok {
		response.NotFound(c, "media not found")
		return
	}
	response.Message(c, "Media deleted successfully")
}
