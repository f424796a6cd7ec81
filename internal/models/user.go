package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 用户角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultSettings 新用户的默认设置
func DefaultSettings() JSONMap {
	return JSONMap{
		"theme":         "light",
		"notifications": true,
	}
}

// User 用户模型
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username" validate:"required,username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email" validate:"required,email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-" validate:"required"`
	Settings     JSONMap   `gorm:"type:text" json:"settings"`
	Role         string    `gorm:"size:20;not null;default:user;index" json:"role" validate:"required,oneof=user admin"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// BeforeCreate 生成字符串ID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
