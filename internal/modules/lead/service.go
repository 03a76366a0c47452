package lead

import (
	"errors"
	"strings"

	"github.com/perkstack/core/internal/models"
	"github.com/perkstack/core/internal/pkg/pagination"
	"github.com/perkstack/core/internal/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrPerkNotFound    = errors.New("perk does not exist")
	ErrPerkNotLeadForm = errors.New("perk does not accept form submissions")
)

var preloads = []string{"Perk"}

type CreateLeadDTO struct {
	PerkID string                 `json:"perkId" binding:"required"`
	Data   map[string]interface{} `json:"data"   binding:"required"`
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

func (s *Service) List(q pagination.Query, perkID, search, sort string) ([]models.LeadModel, response.Meta, error) {
	order := "created_at DESC"
	if strings.EqualFold(sort, "asc") {
		order = "created_at ASC"
	}

	tx := s.hydrated().Model(&models.LeadModel{}).Order(order)
	if perkID != "" {
		tx = tx.Where("perk_id = ?", perkID)
	}
	if search != "" {
		tx = tx.Where("data LIKE ?", "%"+search+"%")
	}

	var leads []models.LeadModel
	meta, err := pagination.Paginate(tx, q, &leads)
	return leads, meta, err
}

func (s *Service) GetByID(id string) (*models.LeadModel, error) {
	var l models.LeadModel
	if err := s.hydrated().First(&l, "leads.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// Capture records a public form submission. The data map is stored
// verbatim; it is not validated against the perk's form schema.
func (s *Service) Capture(dto *CreateLeadDTO, ip string) (*models.LeadModel, error) {
	var perk models.PerkModel
	if err := s.db.First(&perk, "id = ?", dto.PerkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPerkNotFound
		}
		return nil, err
	}
	if perk.RedemptionMethod != models.RedeemFormSubmission {
		return nil, ErrPerkNotLeadForm
	}

	if strings.TrimSpace(ip) == "" {
		ip = models.UnknownIP
	}

	l := models.LeadModel{
		PerkID: dto.PerkID,
		Data:   dto.Data,
		IP:     ip,
	}
	if err := s.db.Create(&l).Error; err != nil {
		return nil, err
	}
	return s.GetByID(l.ID)
}

func (s *Service) Delete(id string) (bool, error) {
	res := s.db.Delete(&models.LeadModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Export returns all leads (optionally filtered by perk) ordered newest
// first, hydrated for the CSV projection.
func (s *Service) Export(perkID string) ([]models.LeadModel, error) {
	tx := s.hydrated().Order("created_at DESC")
	if perkID != "" {
		tx = tx.Where("perk_id = ?", perkID)
	}
	var leads []models.LeadModel
	err := tx.Find(&leads).Error
	return leads, err
}
