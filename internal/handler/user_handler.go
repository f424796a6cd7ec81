package handler

import (
	"errors"

	"task-go/internal/dto"
	"task-go/internal/middleware"
	"task-go/internal/service"
	"task-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户和认证处理器
type UserHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewUserHandler 创建用户处理器
func NewUserHandler(authService *service.AuthService, userService *service.UserService) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
	}
}

// Register 用户注册
// @Summary 用户注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.LoginResponse
// @Router /api/users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Created(c, resp)
}

// Login 用户登录
// @Summary 用户登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.LoginResponse
// @Router /api/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, resp)
}

// Get 获取用户信息
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}

// Me 获取当前Token对应的用户
// @Summary 获取当前用户信息
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /api/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.Unauthorized(c, "authentication required")
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}

// List 获取所有用户（需要管理员）
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, users)
}

// Update 更新设置或密码
// 携带Token时只能修改自己，管理员除外；角色以数据库为准
func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if caller, ok := middleware.GetUserID(c); ok && caller != id {
		if _, err := h.authService.ResolveAdmin(c.Request.Context(), caller); err != nil {
			if errors.Is(err, utils.ErrAuth) || errors.Is(err, utils.ErrAuthorization) {
				err = utils.NewAuthorizationError("cannot modify another user")
			}
			utils.HandleError(c, err)
			return
		}
	}

	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}
