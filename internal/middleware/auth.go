package middleware

import (
	"strings"

	"task-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// 上下文中的键
const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
	ctxAdminID  = "admin_id"
)

// AuthMiddleware JWT认证中间件，缺少或无效的Token返回401
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			utils.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}
		if !authenticate(c, jwtManager) {
			return
		}
		c.Next()
	}
}

// OptionalAuth 有Token时校验并写入上下文，没有Token时放行
func OptionalAuth(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" && !authenticate(c, jwtManager) {
			return
		}
		c.Next()
	}
}

// authenticate 解析Bearer Token，失败时已写出响应并Abort
func authenticate(c *gin.Context, jwtManager *utils.JWTManager) bool {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		utils.Unauthorized(c, "invalid authorization header")
		c.Abort()
		return false
	}

	claims, err := jwtManager.ValidateToken(strings.TrimSpace(parts[1]))
	if err != nil {
		utils.Unauthorized(c, "token is invalid or expired")
		c.Abort()
		return false
	}

	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUsername, claims.Username)
	return true
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ctxUserID)
	return userID, userID != ""
}

// GetUsername 从上下文获取用户名
func GetUsername(c *gin.Context) (string, bool) {
	username := c.GetString(ctxUsername)
	return username, username != ""
}

// GetAdminID 从上下文获取已通过校验的管理员ID
func GetAdminID(c *gin.Context) string {
	return c.GetString(ctxAdminID)
}
