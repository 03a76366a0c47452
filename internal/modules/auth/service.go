package auth

import (
	"errors"
	"time"

	"github.com/perkstack/core/internal/models"
	"github.com/perkstack/core/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrBadCredentials    = errors.New("invalid username or password")
	ErrAlreadyRegistered = errors.New("an account already exists")
	ErrUsernameTaken     = errors.New("username already taken")
)

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterDTO struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
	Mail     string `json:"mail"`
}

type UpdateUserDTO struct {
	Name     *string `json:"name"`
	Mail     *string `json:"mail"`
	Password *string `json:"password"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Login checks the credentials, records the login and issues a session-backed
// token.
func (s *Service) Login(dto *LoginDTO, ip, ua string) (string, *models.UserModel, error) {
	var user models.UserModel
	if err := s.db.First(&user, "username = ?", dto.Username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)) != nil {
		return "", nil, ErrBadCredentials
	}

	token, _, err := session.Issue(s.db, user.ID, ip, ua, session.DefaultTTL)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	_ = s.db.Model(&user).Updates(map[string]interface{}{
		"last_login_time": &now,
		"last_login_ip":   ip,
	}).Error
	user.LastLoginTime = &now
	user.LastLoginIP = ip

	return token, &user, nil
}

func (s *Service) Logout(userID, sessionID string) error {
	return session.Revoke(s.db, userID, sessionID)
}

// Register creates the initial admin account. It only works while the users
// table is empty; afterwards accounts are provisioned by an admin.
func (s *Service) Register(dto *RegisterDTO) (*models.UserModel, error) {
	var count int64
	if err := s.db.Model(&models.UserModel{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.UserModel{
		Username: dto.Username,
		Name:     dto.Name,
		Mail:     dto.Mail,
		Password: string(hash),
		Role:     models.RoleAdmin,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the caller's own account.
func (s *Service) UpdateProfile(userID string, dto *UpdateUserDTO) (*models.UserModel, error) {
	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Mail != nil {
		updates["mail"] = *dto.Mail
	}
	if dto.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password"] = string(hash)
	}
	if len(updates) > 0 {
		if err := s.db.Model(&models.UserModel{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	var user models.UserModel
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
