package models

import "time"

// Roles allowed to mutate content. Anything else is read-only.
const (
	RoleAdmin         = "admin"
	RoleContentEditor = "contentEditor"
	RoleUser          = "user"
)

// UserModel is an admin dashboard account.
type UserModel struct {
	Base
	Username      string     `json:"username" gorm:"uniqueIndex;not null"`
	Name          string     `json:"name"`
	Password      string     `json:"-"        gorm:"not null"`
	Mail          string     `json:"mail"`
	Role          string     `json:"role"     gorm:"type:varchar(32);default:'user'"`
	LastLoginTime *time.Time `json:"lastLoginTime"`
	LastLoginIP   string     `json:"lastLoginIp"`
}

func (UserModel) TableName() string { return "users" }

// UserSession is a revocable login session backing a JWT.
type UserSession struct {
	Base
	UserID    string     `json:"user_id"    gorm:"type:char(36);index;not null"`
	IP        string     `json:"ip"`
	UA        string     `json:"ua"         gorm:"type:text"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index;not null"`
	RevokedAt *time.Time `json:"revoked_at" gorm:"index"`
}

func (UserSession) TableName() string { return "user_sessions" }
