package handler

import (
	"task-go/internal/dto"
	"task-go/internal/service"
	"task-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// TaskHandler 任务处理器
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// List 任务列表
// @Summary 任务列表
// @Tags 任务
// @Produce json
// @Param user_id query string false "所有者ID"
// @Success 200 {array} models.Task
// @Router /api/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.taskService.List(c.Request.Context(), ownerID(c, c.Query("user_id")))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, tasks)
}

// Create 创建任务
// @Summary 创建任务
// @Tags 任务
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "任务信息"
// @Success 201 {object} models.Task
// @Router /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	req.UserID = ownerID(c, req.UserID)

	task, err := h.taskService.Create(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Created(c, task)
}

// Get 获取任务
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.taskService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, task)
}

// Update 部分更新任务
// @Summary 更新任务
// @Tags 任务
// @Accept json
// @Produce json
// @Param id path string true "任务ID"
// @Param request body dto.UpdateTaskRequest true "需要修改的字段"
// @Success 200 {object} models.Task
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, task)
}

// Delete 删除任务
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.taskService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.NoContent(c)
}
