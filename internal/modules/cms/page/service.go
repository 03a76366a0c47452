package page

import (
	"errors"

	"github.com/perkstack/core/internal/models"
	"github.com/perkstack/core/internal/pkg/optional"
	"github.com/perkstack/core/internal/pkg/pagination"
	"github.com/perkstack/core/internal/pkg/response"
	slugpkg "github.com/perkstack/core/internal/pkg/slug"
	"gorm.io/gorm"
)

var (
	ErrSlugExists    = errors.New("page slug already exists")
	ErrInvalidStatus = errors.New("invalid page status")
)

type CreatePageDTO struct {
	Title          string             `json:"title" binding:"required"`
	Slug           string             `json:"slug"`
	Status         *models.PageStatus `json:"status"`
	SEOTitle       *string            `json:"seoTitle"`
	SEODescription *string            `json:"seoDescription"`
	OGImageID      *string            `json:"ogImageId"`
}

type UpdatePageDTO struct {
	Title          *string                `json:"title"`
	Slug           *string                `json:"slug"`
	Status         *models.PageStatus     `json:"status"`
	SEOTitle       optional.Field[string] `json:"seoTitle"`
	SEODescription optional.Field[string] `json:"seoDescription"`
	OGImageID      optional.Field[string] `json:"ogImageId"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) hydrated() *gorm.DB {
	tx := s.db.Preload("OGImage")
	tx = tx.Preload("Sections", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("display_order ASC, created_at DESC")
	})
	return tx
}

func (s *Service) List(q pagination.Query, search, status string) ([]models.PageModel, response.Meta, error) {
	tx := s.hydrated().Model(&models.PageModel{}).
		Order("created_at DESC")
	if search != "" {
		like := "%" + search + "%"
		tx = tx.Where("title LIKE ? OR slug LIKE ?", like, like)
	}
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	var pages []models.PageModel
	meta, err := pagination.Paginate(tx, q, &pages)
	return pages, meta, err
}

func (s *Service) GetByID(id string) (*models.PageModel, error) {
	return s.getOne("pages.id = ?", id)
}

func (s *Service) GetBySlug(slug string) (*models.PageModel, error) {
	return s.getOne("pages.slug = ?", slug)
}

func (s *Service) getOne(query, arg string) (*models.PageModel, error) {
	var p models.PageModel
	if err := s.hydrated().First(&p, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) Create(dto *CreatePageDTO) (*models.PageModel, error) {
	slug := dto.Slug
	if slug == "" {
		slug = slugpkg.Derive(dto.Title)
	}

	var count int64
	if err := s.db.Model(&models.PageModel{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	status := models.PageDraft
	if dto.Status != nil {
		if !dto.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		status = *dto.Status
	}

	p := models.PageModel{
		Title:  dto.Title,
		Slug:   slug,
		Status: status,
		SEOFields: models.SEOFields{
			SEOTitle:       dto.SEOTitle,
			SEODescription: dto.SEODescription,
			OGImageID:      dto.OGImageID,
		},
	}
	if err := s.db.Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugExists
		}
		return nil, err
	}
	return s.GetByID(p.ID)
}

func (s *Service) Update(id string, dto *UpdatePageDTO) (*models.PageModel, error) {
	p, err := s.GetByID(id)
	if err != nil || p == nil {
		return p, err
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
	}
	if dto.Slug != nil && *dto.Slug != p.Slug {
		var count int64
		if err := s.db.Model(&models.PageModel{}).
			Where("slug = ? AND id <> ?", *dto.Slug, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSlugExists
		}
		updates["slug"] = *dto.Slug
	}
	if dto.Status != nil {
		if !dto.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		updates["status"] = *dto.Status
	}
	if dto.SEOTitle.Defined {
		updates["seo_title"] = dto.SEOTitle.Value
	}
	if dto.SEODescription.Defined {
		updates["seo_description"] = dto.SEODescription.Value
	}
	if dto.OGImageID.Defined {
		updates["og_image_id"] = dto.OGImageID.Value
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.PageModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

// Delete hard-deletes the page. Sections and content fields are left to
// the database/caller; the handler does not cascade.
func (s *Service) Delete(id string) (bool, error) {
	res := s.db.Delete(&models.PageModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
