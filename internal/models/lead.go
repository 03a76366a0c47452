package models

// UnknownIP is recorded when the submitter's address cannot be determined.
const UnknownIP = "<unknown>"

// LeadModel is a captured form submission against a perk configured for
// form-submission redemption. Data holds field-id keyed values matching the
// perk's lead form config at submission time; it is not re-validated against
// that schema at read time.
type LeadModel struct {
	Base
	PerkID string  `json:"perkId" gorm:"type:char(36);index;not null"`
	Data   JSONMap `json:"data"   gorm:"type:longtext"`
	IP     string  `json:"ip"     gorm:"default:'<unknown>'"`

	Perk *PerkModel `json:"perk,omitempty" gorm:"foreignKey:PerkID"`
}

func (LeadModel) TableName() string { return "leads" }
