package dto

import "task-go/internal/models"

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest 登录请求，email 和 username 任选其一
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Identifier 登录标识，优先使用邮箱
func (r *LoginRequest) Identifier() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Username
}

// LoginResponse 登录/注册响应，用户字段平铺在顶层
type LoginResponse struct {
	models.User
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UpdateUserRequest 更新用户设置或密码
type UpdateUserRequest struct {
	Settings        Field[map[string]interface{}] `json:"settings"`
	Password        Field[string]                 `json:"password"`
	CurrentPassword string                        `json:"current_password"`
}
