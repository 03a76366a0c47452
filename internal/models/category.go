package models

// CategoryModel is a top-level taxonomy entry. Presentation order is manual
// via DisplayOrder; ties break on created_at descending.
type CategoryModel struct {
	Base
	Name         string  `json:"name"         gorm:"not null"`
	Slug         string  `json:"slug"         gorm:"uniqueIndex;not null"`
	Description  *string `json:"description"`
	DisplayOrder int     `json:"displayOrder" gorm:"default:0;index"`
	SEOFields

	Subcategories []SubcategoryModel `json:"subcategories,omitempty" gorm:"foreignKey:CategoryID"`
}

func (CategoryModel) TableName() string { return "categories" }

// SubcategoryModel is a second-level taxonomy entry owned by a category.
// Deleting a category does not cascade here; referential checks happen at
// write time in the handlers.
type SubcategoryModel struct {
	Base
	CategoryID   string  `json:"categoryId"   gorm:"type:char(36);index;not null"`
	Name         string  `json:"name"         gorm:"not null"`
	Slug         string  `json:"slug"         gorm:"uniqueIndex;not null"`
	Description  *string `json:"description"`
	DisplayOrder int     `json:"displayOrder" gorm:"default:0;index"`
	SEOFields

	Category *CategoryModel `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (SubcategoryModel) TableName() string { return "subcategories" }
