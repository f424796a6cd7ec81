package dto

import (
	"time"

	"task-go/internal/models"
)

// UserStats 用户统计
type UserStats struct {
	Total      int64   `json:"total"`
	Admins     int64   `json:"admins"`
	New24h     int64   `json:"new_24h"`
	New7d      int64   `json:"new_7d"`
	New30d     int64   `json:"new_30d"`
	AdminRatio float64 `json:"admin_ratio"`
}

// TaskStats 任务统计
type TaskStats struct {
	Total          int64   `json:"total"`
	Completed      int64   `json:"completed"`
	Pending        int64   `json:"pending"`
	Created24h     int64   `json:"created_24h"`
	Created7d      int64   `json:"created_7d"`
	Created30d     int64   `json:"created_30d"`
	Updated24h     int64   `json:"updated_24h"`
	Updated7d      int64   `json:"updated_7d"`
	Updated30d     int64   `json:"updated_30d"`
	Overdue        int64   `json:"overdue"`
	CompletionRate float64 `json:"completion_rate"`
}

// AdminStats 管理后台统计
type AdminStats struct {
	Users       int64     `json:"users"`
	Tasks       int64     `json:"tasks"`
	Categories  int64     `json:"categories"`
	UserStats   UserStats `json:"user_stats"`
	TaskStats   TaskStats `json:"task_stats"`
	GeneratedAt time.Time `json:"generated_at"`
}

// AdminRequest DELETE 请求体中携带的管理员标识
type AdminRequest struct {
	AdminID string `json:"admin_id"`
}

// TaskPage 管理员分页任务列表
type TaskPage struct {
	Items   []models.Task `json:"items"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}
