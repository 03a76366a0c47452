package category

import (
	"errors"

	"github.com/perkstack/core/internal/models"
	"github.com/perkstack/core/internal/pkg/optional"
	"github.com/perkstack/core/internal/pkg/ordering"
	"github.com/perkstack/core/internal/pkg/pagination"
	"github.com/perkstack/core/internal/pkg/response"
	slugpkg "github.com/perkstack/core/internal/pkg/slug"
	"gorm.io/gorm"
)

var ErrSlugExists = errors.New("category slug already exists")

// preloads is the relation set hydrated by list, read and post-write
// re-fetch.
var preloads = []string{"OGImage", "Subcategories", "Subcategories.OGImage"}

type CreateCategoryDTO struct {
	Name           string  `json:"name" binding:"required"`
	Slug           string  `json:"slug"`
	Description    *string `json:"description"`
	SEOTitle       *string `json:"seoTitle"`
	SEODescription *string `json:"seoDescription"`
	OGImageID      *string `json:"ogImageId"`
}

type UpdateCategoryDTO struct {
	Name           *string                `json:"name"`
	Slug           *string                `json:"slug"`
	Description    optional.Field[string] `json:"description"`
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
	tx := s.db
	for _, rel := range preloads {
		tx = tx.Preload(rel)
	}
	return tx
}

func (s *Service) List(q pagination.Query, search string) ([]models.CategoryModel, response.Meta, error) {
	tx := s.hydrated().Model(&models.CategoryModel{}).
		Order("display_order ASC, created_at DESC")
	if search != "" {
		like := "%" + search + "%"
		tx = tx.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	var cats []models.CategoryModel
	meta, err := pagination.Paginate(tx, q, &cats)
	return cats, meta, err
}

func (s *Service) GetByID(id string) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	if err := s.hydrated().First(&cat, "categories.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (s *Service) Create(dto *CreateCategoryDTO) (*models.CategoryModel, error) {
	slug := dto.Slug
	if slug == "" {
		slug = slugpkg.Derive(dto.Name)
	}

	var count int64
	if err := s.db.Model(&models.CategoryModel{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	next, err := ordering.NextDisplayOrder(s.db.Model(&models.CategoryModel{}))
	if err != nil {
		return nil, err
	}

	cat := models.CategoryModel{
		Name:         dto.Name,
		Slug:         slug,
		Description:  dto.Description,
		DisplayOrder: next,
		SEOFields: models.SEOFields{
			SEOTitle:       dto.SEOTitle,
			SEODescription: dto.SEODescription,
			OGImageID:      dto.OGImageID,
		},
	}
	if err := s.db.Create(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugExists
		}
		return nil, err
	}
	return s.GetByID(cat.ID)
}

func (s *Service) Update(id string, dto *UpdateCategoryDTO) (*models.CategoryModel, error) {
	cat, err := s.GetByID(id)
	if err != nil || cat == nil {
		return cat, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Slug != nil && *dto.Slug != cat.Slug {
		var count int64
		if err := s.db.Model(&models.CategoryModel{}).
			Where("slug = ? AND id <> ?", *dto.Slug, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSlugExists
		}
		updates["slug"] = *dto.Slug
	}
	if dto.Description.Defined {
		updates["description"] = dto.Description.Value
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
		if err := s.db.Model(&models.CategoryModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

// Delete hard-deletes the category. Orphaned subcategories are left in
// place; cascading is not this handler's responsibility.
func (s *Service) Delete(id string) (bool, error) {
	res := s.db.Delete(&models.CategoryModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Service) Reorder(items []ordering.Item) error {
	if err := ordering.Reorder(s.db, &models.CategoryModel{}, nil, items); err != nil {
		return err
	}
	return nil
}
