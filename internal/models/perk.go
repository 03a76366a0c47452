package models

import (
	"encoding/json"
	"time"
)

// PerkLocation restricts where an offer is redeemable.
type PerkLocation string

const (
	LocationGlobal    PerkLocation = "global"
	LocationMalaysia  PerkLocation = "malaysia"
	LocationSingapore PerkLocation = "singapore"
)

func (l PerkLocation) Valid() bool {
	switch l {
	case LocationGlobal, LocationMalaysia, LocationSingapore:
		return true
	}
	return false
}

// RedemptionMethod is how an end user claims a perk. Exactly one of the
// three redemption payloads must be populated, matching the method.
type RedemptionMethod string

const (
	RedeemAffiliateLink  RedemptionMethod = "affiliate_link"
	RedeemCouponCode     RedemptionMethod = "coupon_code"
	RedeemFormSubmission RedemptionMethod = "form_submission"
)

func (m RedemptionMethod) Valid() bool {
	switch m {
	case RedeemAffiliateLink, RedeemCouponCode, RedeemFormSubmission:
		return true
	}
	return false
}

// PerkModel is the central offer entity.
type PerkModel struct {
	Base
	Title       string  `json:"title"       gorm:"not null"`
	Slug        string  `json:"slug"        gorm:"uniqueIndex;not null"`
	Summary     *string `json:"summary"`
	Description *string `json:"description" gorm:"type:longtext"`
	VendorName  string  `json:"vendorName"`

	LogoImageID   *string     `json:"logoImageId"           gorm:"type:char(36);index"`
	LogoImage     *MediaModel `json:"logoImage,omitempty"   gorm:"foreignKey:LogoImageID"`
	BannerImageID *string     `json:"bannerImageId"         gorm:"type:char(36);index"`
	BannerImage   *MediaModel `json:"bannerImage,omitempty" gorm:"foreignKey:BannerImageID"`

	Location         PerkLocation     `json:"location"         gorm:"type:varchar(32);default:'global';index"`
	RedemptionMethod RedemptionMethod `json:"redemptionMethod" gorm:"type:varchar(32);not null;index"`
	AffiliateLink    *string          `json:"affiliateLink"`
	CouponCode       *string          `json:"couponCode"`
	LeadFormSlug     *string          `json:"leadFormSlug"     gorm:"index"`
	LeadFormConfig   *LeadFormConfig  `json:"leadFormConfig,omitempty" gorm:"type:longtext;serializer:json"`

	CategoryID    *string           `json:"categoryId"            gorm:"type:char(36);index"`
	Category      *CategoryModel    `json:"category,omitempty"    gorm:"foreignKey:CategoryID"`
	SubcategoryID *string           `json:"subcategoryId"         gorm:"type:char(36);index"`
	Subcategory   *SubcategoryModel `json:"subcategory,omitempty" gorm:"foreignKey:SubcategoryID"`

	StartDate    *time.Time  `json:"startDate"`
	EndDate      *time.Time  `json:"endDate"`
	IsFeatured   bool        `json:"isFeatured"   gorm:"default:false;index"`
	Status       string      `json:"status"       gorm:"default:'active';index"`
	DisplayOrder int         `json:"displayOrder" gorm:"default:0;index"`
	Keywords     StringArray `json:"keywords"     gorm:"type:json"`
	SEOFields
}

func (PerkModel) TableName() string { return "perks" }

// LeadFormFieldType enumerates supported lead-capture input kinds.
var leadFormFieldTypes = map[string]bool{
	"text": true, "email": true, "tel": true,
	"textarea": true, "select": true, "checkbox": true,
}

// LeadFormField describes one input in a perk's lead-capture form.
type LeadFormField struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []string `json:"options,omitempty"`
	Validation  string   `json:"validation,omitempty"`
	HelpText    string   `json:"helpText,omitempty"`
	Required    bool     `json:"required"`
}

// ThankYouBlock is shown after a successful submission.
type ThankYouBlock struct {
	Title           string `json:"title"`
	Message         string `json:"message"`
	ShowPerkDetails bool   `json:"showPerkDetails"`
}

// RedirectRule is the enabled variant of the post-submit redirect. A nil
// *RedirectRule on LeadFormConfig means the redirect is disabled; the
// "enabled flag plus optional payload" wire shape never reaches storage.
type RedirectRule struct {
	URL     string `json:"url"`
	DelayMS int    `json:"delay"`
}

// NotificationRule is the enabled variant of the partner notification.
type NotificationRule struct {
	PartnerEmail    string `json:"partnerEmail"`
	SendImmediately bool   `json:"sendImmediately"`
}

// ConsentBlock configures the consent checkbox on the form.
type ConsentBlock struct {
	Required bool   `json:"required"`
	Text     string `json:"text"`
}

// LeadFormConfig is embedded JSON on a perk, meaningful only when
// RedemptionMethod is form_submission.
type LeadFormConfig struct {
	Fields       []LeadFormField   `json:"fields"`
	ThankYou     ThankYouBlock     `json:"thankYou"`
	Redirect     *RedirectRule     `json:"-"`
	Notification *NotificationRule `json:"-"`
	Consent      ConsentBlock      `json:"consent"`
}

type redirectWire struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url,omitempty"`
	DelayMS int    `json:"delay,omitempty"`
}

type notificationWire struct {
	Enabled         bool   `json:"enabled"`
	PartnerEmail    string `json:"partnerEmail,omitempty"`
	SendImmediately bool   `json:"sendImmediately,omitempty"`
}

type leadFormConfigWire struct {
	Fields       []LeadFormField   `json:"fields"`
	ThankYou     ThankYouBlock     `json:"thankYou"`
	Redirect     *redirectWire     `json:"redirect,omitempty"`
	Notification *notificationWire `json:"notification,omitempty"`
	Consent      ConsentBlock      `json:"consent"`
}

// UnmarshalJSON converts the wire "enabled flag + payload" sub-blocks into
// tagged variants: a disabled sub-block is dropped entirely, enabled ones
// keep only their payload.
func (c *LeadFormConfig) UnmarshalJSON(data []byte) error {
	var w leadFormConfigWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.Fields = w.Fields
	c.ThankYou = w.ThankYou
	c.Consent = w.Consent
	c.Redirect = nil
	c.Notification = nil
	if w.Redirect != nil && w.Redirect.Enabled {
		c.Redirect = &RedirectRule{URL: w.Redirect.URL, DelayMS: w.Redirect.DelayMS}
	}
	if w.Notification != nil && w.Notification.Enabled {
		c.Notification = &NotificationRule{
			PartnerEmail:    w.Notification.PartnerEmail,
			SendImmediately: w.Notification.SendImmediately,
		}
	}
	return nil
}

func (c LeadFormConfig) MarshalJSON() ([]byte, error) {
	w := leadFormConfigWire{
		Fields:   c.Fields,
		ThankYou: c.ThankYou,
		Consent:  c.Consent,
	}
	if c.Redirect != nil {
		w.Redirect = &redirectWire{Enabled: true, URL: c.Redirect.URL, DelayMS: c.Redirect.DelayMS}
	}
	if c.Notification != nil {
		w.Notification = &notificationWire{
			Enabled:         true,
			PartnerEmail:    c.Notification.PartnerEmail,
			SendImmediately: c.Notification.SendImmediately,
		}
	}
	return json.Marshal(w)
}

// Validate checks structural invariants of a lead form config.
func (c *LeadFormConfig) Validate() error {
	for _, f := range c.Fields {
		if f.ID == "" {
			return ErrLeadFormFieldID
		}
		if !leadFormFieldTypes[f.Type] {
			return ErrLeadFormFieldType
		}
	}
	if c.Redirect != nil && c.Redirect.URL == "" {
		return ErrRedirectURLRequired
	}
	if c.Notification != nil && c.Notification.PartnerEmail == "" {
		return ErrPartnerEmailRequired
	}
	return nil
}
