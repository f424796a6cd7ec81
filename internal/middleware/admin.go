package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"task-go/internal/models"
	"task-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// AdminResolver 把标识解析为管理员用户
type AdminResolver interface {
	ResolveAdmin(ctx context.Context, identifier string) (*models.User, error)
}

// AdminMiddleware 管理员能力检查
// 标识依次取自：Token、查询参数 admin_id、请求头 X-Admin-ID、JSON请求体中的 admin_id
// 角色每次都从数据库重新读取
func AdminMiddleware(resolver AdminResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, err := resolver.ResolveAdmin(c.Request.Context(), adminIdentifier(c))
		if err != nil {
			utils.HandleError(c, err)
			c.Abort()
			return
		}

		c.Set(ctxAdminID, admin.ID)
		c.Next()
	}
}

func adminIdentifier(c *gin.Context) string {
	if id, ok := GetUserID(c); ok {
		return id
	}
	if id := strings.TrimSpace(c.Query("admin_id")); id != "" {
		return id
	}
	if id := strings.TrimSpace(c.GetHeader("X-Admin-ID")); id != "" {
		return id
	}
	return adminIDFromBody(c)
}

// adminIDFromBody 读取请求体中的 admin_id，读完后恢复请求体供后续绑定
func adminIDFromBody(c *gin.Context) string {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return ""
	}

	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}

	var payload struct {
		AdminID string `json:"admin_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.AdminID)
}
