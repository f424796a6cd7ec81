package handler

import (
	"task-go/internal/dto"
	"task-go/internal/service"
	"task-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 分类处理器
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler 创建分类处理器
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List 分类列表
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context(), ownerID(c, c.Query("user_id")))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, categories)
}

// Create 创建分类
// @Summary 创建分类
// @Tags 分类
// @Accept json
// @Produce json
// @Param request body dto.CreateCategoryRequest true "分类信息"
// @Success 201 {object} models.Category
// @Router /api/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	req.UserID = ownerID(c, req.UserID)

	category, err := h.categoryService.Create(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Created(c, category)
}

// Get 获取分类
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categoryService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, category)
}

// Update 更新分类
func (h *CategoryHandler) Update(c *gin.Context) {
	var req dto.UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, category)
}

// Delete 删除分类，仍有任务引用时拒绝
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.NoContent(c)
}
