package settings

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/models"
	"github.com/perkstack/core/internal/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RobotsKey is the setting served verbatim at GET /robots.txt.
const RobotsKey = "robots_txt"

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// All returns every setting as a flat name -> value object.
func (s *Service) All() (map[string]string, error) {
	var rows []models.SettingModel
	if err := s.db.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Name] = row.Value
	}
	return out, nil
}

func (s *Service) Get(name string) (*models.SettingModel, error) {
	var row models.SettingModel
	if err := s.db.First(&row, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Set upserts a setting by name.
func (s *Service) Set(name, value string) (*models.SettingModel, error) {
	row := models.SettingModel{Name: name, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}
	return s.Get(name)
}

func (s *Service) Delete(name string) (bool, error) {
	res := s.db.Delete(&models.SettingModel{}, "name = ?", name)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, editorMW []gin.HandlerFunc) {
	settings := rg.Group("/settings")
	settings.GET("", h.all)
	settings.GET("/:name", h.get)

	authed := settings.Group("", editorMW...)
	authed.PATCH("/:name", h.set)
	authed.PUT("/:name", h.set)
	authed.DELETE("/:name", h.delete)
}

// ServeRobots writes the robots_txt setting as text/plain at the site root.
func (h *Handler) ServeRobots(c *gin.Context) {
	row, err := h.svc.Get(RobotsKey)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	body := "User-agent: *\nAllow: /\n"
	if row != nil && row.Value != "" {
		body = row.Value
	}
	c.Data(200, "text/plain; charset=utf-8", []byte(body))
}

func (h *Handler) all(c *gin.Context) {
	values, err := h.svc.All()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, values)
}

func (h *Handler) get(c *gin.Context) {
	row, err := h.svc.Get(c.Param("name"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if row == nil {
		response.NotFound(c, "setting not found")
		return
	}
	response.OK(c, row)
}

type setDTO struct {
	Value string `json:"value"`
}

func (h *Handler) set(c *gin.Context) {
	var dto setDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	row, err := h.svc.Set(c.Param("name"), dto.Value)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, row)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Param("name"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !ok {
		response.NotFound(c, "setting not found")
		return
	}
	response.Message(c, "Setting deleted successfully")
}
