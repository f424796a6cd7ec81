package handler

import (
	"strconv"

	"task-go/internal/middleware"
	"task-go/internal/service"
	"task-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler 管理员处理器，路由前必须经过 AdminMiddleware
type AdminHandler struct {
	userService     *service.UserService
	taskService     *service.TaskService
	categoryService *service.CategoryService
	statsService    *service.StatsService
}

// NewAdminHandler 创建管理员处理器
func NewAdminHandler(
	userService *service.UserService,
	taskService *service.TaskService,
	categoryService *service.CategoryService,
	statsService *service.StatsService,
) *AdminHandler {
	return &AdminHandler{
		userService:     userService,
		taskService:     taskService,
		categoryService: categoryService,
		statsService:    statsService,
	}
}

// ListUsers 获取所有用户
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, users)
}

// DeleteUser 删除用户，不能删除自己
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), middleware.GetAdminID(c), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.NoContent(c)
}

// ListTasks 获取所有用户的任务，带 page 参数时分页返回
func (h *AdminHandler) ListTasks(c *gin.Context) {
	if c.Query("page") != "" {
		page, _ := strconv.Atoi(c.Query("page"))
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

		result, err := h.taskService.ListPage(c.Request.Context(), page, perPage)
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		utils.SuccessResponse(c, result)
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, tasks)
}

// DeleteTask 删除任意任务，同样维护分类计数
func (h *AdminHandler) DeleteTask(c *gin.Context) {
	if err := h.taskService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.NoContent(c)
}

// Stats 管理后台统计
// @Summary 管理后台统计
// @Tags 管理员
// @Produce json
// @Param admin_id query string false "管理员ID（无Token时）"
// @Success 200 {object} dto.AdminStats
// @Router /api/admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.statsService.Compute(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, stats)
}

// ReconcileCategories 按实时任务数重算分类计数
func (h *AdminHandler) ReconcileCategories(c *gin.Context) {
	result, err := h.categoryService.Reconcile(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}
