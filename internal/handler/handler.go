package handler

import (
	"errors"
	"io"
	"strings"

	"task-go/internal/middleware"
	"task-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// bindJSON 绑定请求体，失败时写出 400 并返回 false
func bindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		utils.HandleError(c, utils.NewValidationError("request body is required"))
		return false
	}
	utils.HandleError(c, utils.FormatBindError(err))
	return false
}

// ownerID 请求中没有 user_id 时使用Token中的用户
func ownerID(c *gin.Context, supplied string) string {
	if id := strings.TrimSpace(supplied); id != "" {
		return id
	}
	id, _ := middleware.GetUserID(c)
	return id
}
