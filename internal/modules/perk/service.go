package perk

import (
	"errors"
	"strings"

	"github.com/perkstack/core/internal/models"
	"github.com/perkstack/core/internal/pkg/ordering"
	"github.com/perkstack/core/internal/pkg/pagination"
	"github.com/perkstack/core/internal/pkg/response"
	slugpkg "github.com/perkstack/core/internal/pkg/slug"
	"gorm.io/gorm"
)

// preloads is the relation set hydrated by list, read and post-write
// re-fetch: every media reference plus the taxonomy chain with its own
// media.
var preloads = []string{
	"LogoImage", "BannerImage", "OGImage",
	"Category", "Category.OGImage",
	"Subcategory", "Subcategory.OGImage",
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

func (s *Service) List(q pagination.Query, f ListFilters) ([]models.PerkModel, response.Meta, error) {
	order := "display_order ASC, created_at DESC"
	switch strings.ToLower(f.Sort) {
	case "asc":
		order = "created_at ASC"
	case "desc":
		order = "created_at DESC"
	}

	tx := s.hydrated().Model(&models.PerkModel{}).Order(order)
	if f.Search != "" {
		like := "%" + f.Search + "%"
		tx = tx.Where("title LIKE ? OR vendor_name LIKE ? OR summary LIKE ?", like, like, like)
	}
	if f.CategoryID != "" {
		tx = tx.Where("category_id = ?", f.CategoryID)
	}
	if f.SubcategoryID != "" {
		tx = tx.Where("subcategory_id = ?", f.SubcategoryID)
	}
	if f.Location != "" {
		tx = tx.Where("location = ?", f.Location)
	}
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.RedemptionMethod != "" {
		tx = tx.Where("redemption_method = ?", f.RedemptionMethod)
	}
	if f.Featured != "" {
		tx = tx.Where("is_featured = ?", f.Featured == "true")
	}

	var perks []models.PerkModel
	meta, err := pagination.Paginate(tx, q, &perks)
	return perks, meta, err
}

func (s *Service) GetByID(id string) (*models.PerkModel, error) {
	return s.getOne("perks.id = ?", id)
}

// GetBySlug resolves a perk by slug. No category-consistency check is
// performed here; storefront callers verify the resolved perk's category
// against their URL context themselves.
func (s *Service) GetBySlug(slug string) (*models.PerkModel, error) {
	return s.getOne("perks.slug = ?", slug)
}

func (s *Service) getOne(query string, arg string) (*models.PerkModel, error) {
	var p models.PerkModel
	if err := s.hydrated().First(&p, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) Create(dto *CreatePerkDTO) (*models.PerkModel, error) {
	slug := dto.Slug
	if slug == "" {
		slug = slugpkg.Derive(dto.Title)
	}
	if taken, err := s.slugTaken(slug, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrSlugExists
	}

	location := dto.Location
	if location == "" {
		location = models.LocationGlobal
	}

	p := models.PerkModel{
		Title:            dto.Title,
		Slug:             slug,
		Summary:          dto.Summary,
		Description:      dto.Description,
		VendorName:       dto.VendorName,
		LogoImageID:      dto.LogoImageID,
		BannerImageID:    dto.BannerImageID,
		Location:         location,
		RedemptionMethod: dto.RedemptionMethod,
		AffiliateLink:    dto.AffiliateLink,
		CouponCode:       dto.CouponCode,
		LeadFormSlug:     dto.LeadFormSlug,
		LeadFormConfig:   dto.LeadFormConfig,
		CategoryID:       dto.CategoryID,
		SubcategoryID:    dto.SubcategoryID,
		StartDate:        dto.StartDate,
		EndDate:          dto.EndDate,
		Status:           "active",
		Keywords:         dto.Keywords,
		SEOFields: models.SEOFields{
			SEOTitle:       dto.SEOTitle,
			SEODescription: dto.SEODescription,
			OGImageID:      dto.OGImageID,
		},
	}
	if dto.IsFeatured != nil {
		p.IsFeatured = *dto.IsFeatured
	}
	if dto.Status != nil {
		p.Status = *dto.Status
	}

	if err := s.validate(&p, ""); err != nil {
		return nil, err
	}

	next, err := ordering.NextDisplayOrder(s.db.Model(&models.PerkModel{}))
	if err != nil {
		return nil, err
	}
	p.DisplayOrder = next

	if err := s.db.Create(&p).Error; err != nil {
		// The uniqueness pre-check can race with a concurrent create; a
		// constraint violation here still reports as "already exists".
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugExists
		}
		return nil, err
	}
	return s.GetByID(p.ID)
}

func (s *Service) Update(id string, dto *UpdatePerkDTO) (*models.PerkModel, error) {
	existing, err := s.getOne("perks.id = ?", id)
	if err != nil || existing == nil {
		return existing, err
	}

	p := *existing
	p.Category = nil
	p.Subcategory = nil
	p.LogoImage = nil
	p.BannerImage = nil
	p.OGImage = nil

	if dto.Title != nil {
		p.Title = *dto.Title
	}
	if dto.Slug != nil && *dto.Slug != p.Slug {
		if taken, err := s.slugTaken(*dto.Slug, id); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrSlugExists
		}
		p.Slug = *dto.Slug
	}
	if dto.Summary.Defined {
		p.Summary = dto.Summary.Value
	}
	if dto.Description.Defined {
		p.Description = dto.Description.Value
	}
	if dto.VendorName != nil {
		p.VendorName = *dto.VendorName
	}
	if dto.LogoImageID.Defined {
		p.LogoImageID = dto.LogoImageID.Value
	}
	if dto.BannerImageID.Defined {
		p.BannerImageID = dto.BannerImageID.Value
	}
	if dto.Location != nil {
		p.Location = *dto.Location
	}
	if dto.RedemptionMethod != nil {
		p.RedemptionMethod = *dto.RedemptionMethod
	}
	if dto.AffiliateLink.Defined {
		p.AffiliateLink = dto.AffiliateLink.Value
	}
	if dto.CouponCode.Defined {
		p.CouponCode = dto.CouponCode.Value
	}
	if dto.LeadFormSlug.Defined {
		p.LeadFormSlug = dto.LeadFormSlug.Value
	}
	if dto.LeadFormConfig != nil {
		p.LeadFormConfig = dto.LeadFormConfig
	}
	if dto.CategoryID.Defined {
		p.CategoryID = dto.CategoryID.Value
	}
	if dto.SubcategoryID.Defined {
		p.SubcategoryID = dto.SubcategoryID.Value
	}
	if dto.StartDate.Defined {
		p.StartDate = dto.StartDate.Value
	}
	if dto.EndDate.Defined {
		p.EndDate = dto.EndDate.Value
	}
	if dto.IsFeatured != nil {
		p.IsFeatured = *dto.IsFeatured
	}
	if dto.Status != nil {
		p.Status = *dto.Status
	}
	if dto.Keywords != nil {
		p.Keywords = dto.Keywords
	}
	if dto.SEOTitle.Defined {
		p.SEOTitle = dto.SEOTitle.Value
	}
	if dto.SEODescription.Defined {
		p.SEODescription = dto.SEODescription.Value
	}
	if dto.OGImageID.Defined {
		p.OGImageID = dto.OGImageID.Value
	}

	if err := s.validate(&p, id); err != nil {
		return nil, err
	}

	if err := s.db.Save(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugExists
		}
		return nil, err
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) (bool, error) {
	res := s.db.Delete(&models.PerkModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Service) Reorder(items []ordering.Item) error {
	return ordering.Reorder(s.db, &models.PerkModel{}, nil, items)
}

func (s *Service) slugTaken(slug, excludeID string) (bool, error) {
	tx := s.db.Model(&models.PerkModel{}).Where("slug = ?", slug)
	if excludeID != "" {
		tx = tx.Where("id <> ?", excludeID)
	}
	var count int64
	err := tx.Count(&count).Error
	return count > 0, err
}

// validate enforces the cross-field and cross-entity invariants of a fully
// merged perk. excludeID is the perk's own id on update paths.
func (s *Service) validate(p *models.PerkModel, excludeID string) error {
	if !p.Location.Valid() {
		return ErrInvalidLocation
	}
	if !p.RedemptionMethod.Valid() {
		return ErrInvalidMethod
	}

	hasLink := p.AffiliateLink != nil && *p.AffiliateLink != ""
	hasCode := p.CouponCode != nil && *p.CouponCode != ""
	hasForm := p.LeadFormSlug != nil && *p.LeadFormSlug != ""

	switch p.RedemptionMethod {
	case models.RedeemAffiliateLink:
		if !hasLink {
			return ErrMissingAffiliateLink
		}
		if hasCode || hasForm {
			return ErrPayloadMismatch
		}
	case models.RedeemCouponCode:
		if !hasCode {
			return ErrMissingCouponCode
		}
		if hasLink || hasForm {
			return ErrPayloadMismatch
		}
	case models.RedeemFormSubmission:
		if !hasForm || p.LeadFormConfig == nil {
			return ErrMissingLeadForm
		}
		if hasLink || hasCode {
			return ErrPayloadMismatch
		}
		if err := p.LeadFormConfig.Validate(); err != nil {
			return err
		}
		taken, err := s.leadFormSlugTaken(*p.LeadFormSlug, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return ErrLeadFormSlugExists
		}
	}

	if p.StartDate != nil && p.EndDate != nil && !p.EndDate.After(*p.StartDate) {
		return ErrDateWindow
	}

	if p.CategoryID != nil {
		var count int64
		if err := s.db.Model(&models.CategoryModel{}).Where("id = ?", *p.CategoryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrCategoryNotFound
		}
	}
	if p.SubcategoryID != nil {
		var sub models.SubcategoryModel
		if err := s.db.First(&sub, "id = ?", *p.SubcategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubcategoryNotFound
			}
			return err
		}
		if p.CategoryID != nil && sub.CategoryID != *p.CategoryID {
			return ErrSubcategoryMismatch
		}
	}

	return nil
}

func (s *Service) leadFormSlugTaken(slug, excludeID string) (bool, error) {
	tx := s.db.Model(&models.PerkModel{}).Where("lead_form_slug = ?", slug)
	if excludeID != "" {
		tx = tx.Where("id <> ?", excludeID)
	}
	var count int64
	err := tx.Count(&count).Error
	return count > 0, err
}
