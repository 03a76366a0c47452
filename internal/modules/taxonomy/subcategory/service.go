package subcategory

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

var (
	ErrSlugExists       = errors.New("subcategory slug already exists")
	ErrCategoryNotFound = errors.New("category does not exist")
)

var preloads = []string{"OGImage", "Category", "Category.OGImage"}

type CreateSubcategoryDTO struct {
	CategoryID     string  `json:"categoryId" binding:"required"`
	Name           string  `json:"name"       binding:"required"`
	Slug           string  `json:"slug"`
	Description    *string `json:"description"`
	SEOTitle       *string `json:"seoTitle"`
	SEODescription *string `json:"seoDescription"`
	OGImageID      *string `json:"ogImageId"`
}

type UpdateSubcategoryDTO struct {
	CategoryID     *string                `json:"categoryId"`
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

func (s *Service) List(q pagination.Query, search, categoryID string) ([]models.SubcategoryModel, response.Meta, error) {
	tx := s.hydrated().Model(&models.SubcategoryModel{}).
		Order("display_order ASC, created_at DESC")
	if search != "" {
		like := "%" + search + "%"
		tx = tx.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if categoryID != "" {
		tx = tx.Where("category_id = ?", categoryID)
	}
	var subs []models.SubcategoryModel
	meta, err := pagination.Paginate(tx, q, &subs)
	return subs, meta, err
}

func (s *Service) GetByID(id string) (*models.SubcategoryModel, error) {
	var sub models.SubcategoryModel
	if err := s.hydrated().First(&sub, "subcategories.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (s *Service) categoryExists(id string) (bool, error) {
	var count int64
	err := s.db.Model(&models.CategoryModel{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (s *Service) Create(dto *CreateSubcategoryDTO) (*models.SubcategoryModel, error) {
	exists, err := s.categoryExists(dto.CategoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCategoryNotFound
	}

	slug := dto.Slug
	if slug == "" {
		slug = slugpkg.Derive(dto.Name)
	}

	var count int64
	if err := s.db.Model(&models.SubcategoryModel{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	// Display order is scoped to the owning category.
	next, err := ordering.NextDisplayOrder(
		s.db.Model(&models.SubcategoryModel{}).Where("category_id = ?", dto.CategoryID))
	if err != nil {
		return nil, err
	}

	sub := models.SubcategoryModel{
		CategoryID:   dto.CategoryID,
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
	if err := s.db.Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugExists
		}
		return nil, err
	}
	return s.GetByID(sub.ID)
}

func (s *Service) Update(id string, dto *UpdateSubcategoryDTO) (*models.SubcategoryModel, error) {
	sub, err := s.GetByID(id)
	if err != nil || sub == nil {
		return sub, err
	}

	updates := map[string]interface{}{}
	if dto.CategoryID != nil && *dto.CategoryID != sub.CategoryID {
		exists, err := s.categoryExists(*dto.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrCategoryNotFound
		}
		updates["category_id"] = *dto.CategoryID
	}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Slug != nil && *dto.Slug != sub.Slug {
		var count int64
		if err := s.db.Model(&models.SubcategoryModel{}).
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
		if err := s.db.Model(&models.SubcategoryModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) (bool, error) {
	res := s.db.Delete(&models.SubcategoryModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Reorder applies position updates scoped to one category when categoryID
// is non-empty, globally otherwise.
func (s *Service) Reorder(categoryID string, items []ordering.Item) error {
	var scope func(*gorm.DB) *gorm.DB
	if categoryID != "" {
		scope = func(tx *gorm.DB) *gorm.DB {
			return tx.Where("category_id = ?", categoryID)
		}
	}
	return ordering.Reorder(s.db, &models.SubcategoryModel{}, scope, items)
}
