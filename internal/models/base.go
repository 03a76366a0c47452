package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is the base model for all entities. IDs are opaque UUID strings,
// never exposed as sequential integers.
type Base struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// SEOFields is embedded in every entity that renders a public page.
type SEOFields struct {
	SEOTitle       *string     `json:"seoTitle"`
	SEODescription *string     `json:"seoDescription"`
	OGImageID      *string     `json:"ogImageId"                gorm:"type:char(36);index"`
	OGImage        *MediaModel `json:"opengraphImage,omitempty" gorm:"foreignKey:OGImageID"`
}
