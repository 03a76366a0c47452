package models

// MediaModel is the metadata registry for uploaded assets. The upload
// pipeline itself lives outside this service; entities reference rows here
// via nullable foreign keys and get the full object hydrated at read time.
type MediaModel struct {
	Base
	URL      string  `json:"url"       gorm:"not null"`
	PublicID string  `json:"publicId"  gorm:"index"`
	Filename string  `json:"filename"  gorm:"not null"`
	Size     int64   `json:"size"      gorm:"default:0"`
	Alt      *string `json:"alt"`
	Caption  *string `json:"caption"`
}

func (MediaModel) TableName() string { return "media" }
