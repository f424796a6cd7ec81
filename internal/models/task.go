package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 任务优先级
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// 任务状态
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Task 任务模型
type Task struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	UserID      string     `gorm:"size:36;not null;index" json:"user_id" validate:"required"`
	CategoryID  *string    `gorm:"size:36;index" json:"category_id"`
	Description string     `gorm:"type:text" json:"description"`
	Priority    string     `gorm:"size:10;not null;default:medium" json:"priority" validate:"required,oneof=low medium high"`
	Status      string     `gorm:"size:20;not null;default:pending;index" json:"status" validate:"required,oneof=pending completed"`
	Deadline    *time.Time `json:"deadline"`
	Subtasks    JSONList   `gorm:"type:text" json:"subtasks"`
	Tags        StringSet  `gorm:"type:text" json:"tags"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"index" json:"updated_at"`
}

// TableName 指定表名
func (Task) TableName() string {
	return "tasks"
}

// IsCompleted 兼容旧版的 completed 布尔字段
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// BeforeCreate 生成字符串ID
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// MarshalJSON 附带派生的 completed 字段
func (t Task) MarshalJSON() ([]byte, error) {
	type alias Task
	subtasks := t.Subtasks
	if subtasks == nil {
		subtasks = JSONList{}
	}
	tags := t.Tags
	if tags == nil {
		tags = StringSet{}
	}
	a := alias(t)
	a.Subtasks = subtasks
	a.Tags = tags
	return json.Marshal(struct {
		alias
		Completed bool `json:"completed"`
	}{a, t.IsCompleted()})
}
