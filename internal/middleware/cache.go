package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CacheInvalidator 可失效的缓存
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// InvalidateOnWrite 写请求成功后清除缓存，读请求和失败的请求不处理
func InvalidateOnWrite(cache CacheInvalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		cache.Invalidate(c.Request.Context())
	}
}
