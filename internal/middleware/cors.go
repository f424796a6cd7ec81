package middleware

import (
	"time"

	"task-go/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS 跨域中间件
func CORS(cfg *config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.Origins) == 0 {
		corsCfg.AllowOriginFunc = func(string) bool { return true }
		return cors.New(corsCfg)
	}
	for _, o := range cfg.Origins {
		if o == "*" {
			corsCfg.AllowOriginFunc = func(string) bool { return true }
			return cors.New(corsCfg)
		}
	}
	corsCfg.AllowOrigins = cfg.Origins
	return cors.New(corsCfg)
}
