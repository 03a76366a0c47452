package models

// PageStatus is the publication state of a CMS page.
type PageStatus string

const (
	PageDraft     PageStatus = "draft"
	PagePublished PageStatus = "published"
	PageArchived  PageStatus = "archived"
)

func (s PageStatus) Valid() bool {
	switch s {
	case PageDraft, PagePublished, PageArchived:
		return true
	}
	return false
}

// PageModel is a CMS page composed of ordered sections and content fields.
type PageModel struct {
	Base
	Title  string     `json:"title"  gorm:"not null"`
	Slug   string     `json:"slug"   gorm:"uniqueIndex;not null"`
	Status PageStatus `json:"status" gorm:"type:varchar(16);default:'draft';index"`
	SEOFields

	Sections []SectionModel `json:"sections,omitempty" gorm:"foreignKey:PageID"`
}

func (PageModel) TableName() string { return "pages" }

// SectionModel groups content fields within a page.
type SectionModel struct {
	Base
	PageID       string  `json:"pageId"       gorm:"type:char(36);index;not null"`
	Title        string  `json:"title"        gorm:"not null"`
	Description  *string `json:"description"`
	DisplayOrder int     `json:"displayOrder" gorm:"default:0;index"`
}

func (SectionModel) TableName() string { return "sections" }

// ContentFieldType enumerates the declared value kinds of a content field.
// Values are string-serialized regardless of type.
var contentFieldTypes = map[string]bool{
	"text": true, "rich_text": true, "image": true, "video": true,
	"link": true, "number": true, "boolean": true,
}

func ValidContentFieldType(t string) bool { return contentFieldTypes[t] }

// ContentFieldModel is a keyed value belonging to a page and optionally to
// one of its sections.
type ContentFieldModel struct {
	Base
	PageID       string  `json:"pageId"       gorm:"type:char(36);index;not null"`
	SectionID    *string `json:"sectionId"    gorm:"type:char(36);index"`
	Key          string  `json:"key"          gorm:"not null"`
	Value        string  `json:"value"        gorm:"type:longtext"`
	Type         string  `json:"type"         gorm:"type:varchar(16);default:'text'"`
	Metadata     JSONMap `json:"metadata"     gorm:"type:longtext"`
	DisplayOrder int     `json:"displayOrder" gorm:"default:0;index"`
}

func (ContentFieldModel) TableName() string { return "content_fields" }
