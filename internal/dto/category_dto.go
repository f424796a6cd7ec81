package dto

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	UserID      string `json:"user_id"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// UpdateCategoryRequest 更新分类请求
type UpdateCategoryRequest struct {
	Name        Field[string] `json:"name"`
	Color       Field[string] `json:"color"`
	Icon        Field[string] `json:"icon"`
	Description Field[string] `json:"description"`
}

// Empty 是否没有任何可识别字段
func (r *UpdateCategoryRequest) Empty() bool {
	return !r.Name.Set && !r.Color.Set && !r.Icon.Set && !r.Description.Set
}

// ReconcileResponse 计数校正结果
type ReconcileResponse struct {
	Checked   int `json:"checked"`
	Corrected int `json:"corrected"`
}
