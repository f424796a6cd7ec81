package dto

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	UserID      string     `json:"user_id"`
	CategoryID  *string    `json:"category_id"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	Deadline    *Timestamp `json:"deadline"`
}

// UpdateTaskRequest 更新任务请求，只处理提供了的字段
// completed 为旧版布尔字段，会被归一化成 status
type UpdateTaskRequest struct {
	Title       Field[string]                   `json:"title"`
	Description Field[string]                   `json:"description"`
	Priority    Field[string]                   `json:"priority"`
	Status      Field[string]                   `json:"status"`
	Completed   Field[bool]                     `json:"completed"`
	Deadline    Field[Timestamp]                `json:"deadline"`
	CategoryID  Field[string]                   `json:"category_id"`
	Subtasks    Field[[]map[string]interface{}] `json:"subtasks"`
	Tags        Field[[]string]                 `json:"tags"`
}
