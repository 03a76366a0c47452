package perk

import (
	"errors"
	"time"

	"github.com/perkstack/core/internal/models"
	"github.com/perkstack/core/internal/pkg/optional"
)

var (
	ErrSlugExists           = errors.New("perk slug already exists")
	ErrLeadFormSlugExists   = errors.New("lead form slug already exists")
	ErrCategoryNotFound     = errors.New("category does not exist")
	ErrSubcategoryNotFound  = errors.New("subcategory does not exist")
	ErrSubcategoryMismatch  = errors.New("subcategory does not belong to the stated category")
	ErrInvalidLocation      = errors.New("invalid location")
	ErrInvalidMethod        = errors.New("invalid redemption method")
	ErrMissingAffiliateLink = errors.New("affiliateLink is required for affiliate_link redemption")
	ErrMissingCouponCode    = errors.New("couponCode is required for coupon_code redemption")
	ErrMissingLeadForm      = errors.New("leadFormSlug and leadFormConfig are required for form_submission redemption")
	ErrPayloadMismatch      = errors.New("redemption payload does not match the redemption method")
	ErrDateWindow           = errors.New("endDate must be after startDate")
)

type CreatePerkDTO struct {
	Title       string  `json:"title" binding:"required"`
	Slug        string  `json:"slug"`
	Summary     *string `json:"summary"`
	Description *string `json:"description"`
	VendorName  string  `json:"vendorName"`

	LogoImageID   *string `json:"logoImageId"`
	BannerImageID *string `json:"bannerImageId"`

	Location         models.PerkLocation     `json:"location"`
	RedemptionMethod models.RedemptionMethod `json:"redemptionMethod" binding:"required"`
	AffiliateLink    *string                 `json:"affiliateLink"`
	CouponCode       *string                 `json:"couponCode"`
	LeadFormSlug     *string                 `json:"leadFormSlug"`
	LeadFormConfig   *models.LeadFormConfig  `json:"leadFormConfig"`

	CategoryID    *string `json:"categoryId"`
	SubcategoryID *string `json:"subcategoryId"`

	StartDate  *time.Time `json:"startDate"`
	EndDate    *time.Time `json:"endDate"`
	IsFeatured *bool      `json:"isFeatured"`
	Status     *string    `json:"status"`
	Keywords   []string   `json:"keywords"`

	SEOTitle       *string `json:"seoTitle"`
	SEODescription *string `json:"seoDescription"`
	OGImageID      *string `json:"ogImageId"`
}

type UpdatePerkDTO struct {
	Title       *string                `json:"title"`
	Slug        *string                `json:"slug"`
	Summary     optional.Field[string] `json:"summary"`
	Description optional.Field[string] `json:"description"`
	VendorName  *string                `json:"vendorName"`

	LogoImageID   optional.Field[string] `json:"logoImageId"`
	BannerImageID optional.Field[string] `json:"bannerImageId"`

	Location         *models.PerkLocation     `json:"location"`
	RedemptionMethod *models.RedemptionMethod `json:"redemptionMethod"`
	AffiliateLink    optional.Field[string]   `json:"affiliateLink"`
	CouponCode       optional.Field[string]   `json:"couponCode"`
	LeadFormSlug     optional.Field[string]   `json:"leadFormSlug"`
	LeadFormConfig   *models.LeadFormConfig   `json:"leadFormConfig"`

	CategoryID    optional.Field[string] `json:"categoryId"`
	SubcategoryID optional.Field[string] `json:"subcategoryId"`

	StartDate  optional.Field[time.Time] `json:"startDate"`
	EndDate    optional.Field[time.Time] `json:"endDate"`
	IsFeatured *bool                     `json:"isFeatured"`
	Status     *string                   `json:"status"`
	Keywords   []string                  `json:"keywords"`

	SEOTitle       optional.Field[string] `json:"seoTitle"`
	SEODescription optional.Field[string] `json:"seoDescription"`
	OGImageID      optional.Field[string] `json:"ogImageId"`
}

// ListFilters is the conjunctive filter set for perk listings. Empty values
// contribute no clause.
type ListFilters struct {
	Search           string
	CategoryID       string
	SubcategoryID    string
	Location         string
	Status           string
	RedemptionMethod string
	Featured         string
	Sort             string // "asc" | "desc" override on created_at
}
