package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCategoryColor 未指定颜色时使用
const DefaultCategoryColor = "#FF5733"

// Category 分类模型
// TaskCount 是冗余计数，必须等于 category_id 指向本分类的任务数
type Category struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:36;not null;uniqueIndex:idx_categories_user_name" json:"user_id" validate:"required"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:idx_categories_user_name" json:"name" validate:"required,max=100"`
	Color       string    `gorm:"size:20" json:"color" validate:"omitempty,max=20"`
	Icon        string    `gorm:"size:100" json:"icon" validate:"max=100"`
	Description string    `gorm:"type:text" json:"description"`
	TaskCount   int64     `gorm:"not null;default:0" json:"task_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

// BeforeCreate 生成字符串ID
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
