package models

// SettingModel is a flat key-value row for site-wide configuration: contact
// info, analytics IDs, robots.txt body, sitemap JSON. Singleton-style, no
// multi-tenancy.
type SettingModel struct {
	Base
	Name  string `json:"name"  gorm:"uniqueIndex;not null"`
	Value string `json:"value" gorm:"type:longtext"`
}

func (SettingModel) TableName() string { return "settings" }
