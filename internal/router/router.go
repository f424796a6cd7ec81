package router

import (
	"net/http"

	"task-go/internal/config"
	"task-go/internal/handler"
	"task-go/internal/middleware"
	"task-go/internal/repository"
	"task-go/internal/service"
	"task-go/internal/utils"
	"task-go/pkg/redis_limiter"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// loginLimiterPrefix 登录失败计数的key前缀
const loginLimiterPrefix = "taskgo:login:"

// SetupRouter 设置路由，redisClient 为 nil 时不启用缓存和登录限制
func SetupRouter(
	cfg *config.Config,
	jwtManager *utils.JWTManager,
	logger *logrus.Logger,
	store *repository.Store,
	redisClient *redis.Client,
	now service.Clock,
) *gin.Engine {
	// 设置Gin模式
	if cfg.Server.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}
	binding.EnableDecoderDisallowUnknownFields = true
	utils.InitValidator()

	r := gin.New()

	// 全局中间件
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(&cfg.CORS))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			logger.WithError(err).Error("health check failed")
			utils.ErrorResponse(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 初始化Service
	var loginLimiter service.LoginLimiter
	if redisClient != nil && cfg.Redis.LoginMaxFailures > 0 {
		loginLimiter = redis_limiter.NewRedisLimiter(
			redisClient,
			cfg.Redis.LoginMaxFailures,
			loginLimiterPrefix,
			cfg.Redis.GetLoginWindow(),
		)
	}

	authService := service.NewAuthService(store, jwtManager, loginLimiter, logger, now)
	userService := service.NewUserService(store, now)
	taskService := service.NewTaskService(store, logger, now)
	categoryService := service.NewCategoryService(store, logger, now)
	statsService := service.NewStatsService(store, redisClient, cfg.Redis.GetStatsCacheTTL(), logger, now)

	// 初始化Handler
	userHandler := handler.NewUserHandler(authService, userService)
	taskHandler := handler.NewTaskHandler(taskService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	adminHandler := handler.NewAdminHandler(userService, taskService, categoryService, statsService)

	// API路由组
	api := r.Group("/api")
	if cfg.RateLimit.RequestsPerSecond > 0 {
		api.Use(middleware.RateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst))
	}
	api.Use(middleware.OptionalAuth(jwtManager))

	adminOnly := middleware.AdminMiddleware(authService)
	invalidateStats := middleware.InvalidateOnWrite(statsService)

	users := api.Group("/users")
	{
		users.POST("", invalidateStats, userHandler.Register)
		users.POST("/login", userHandler.Login)
		users.GET("", adminOnly, userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.PUT("/:id", userHandler.Update)
	}

	api.GET("/me", middleware.AuthMiddleware(jwtManager), userHandler.Me)

	tasks := api.Group("/tasks")
	tasks.Use(invalidateStats)
	{
		tasks.GET("", taskHandler.List)
		tasks.POST("", taskHandler.Create)
		tasks.GET("/:id", taskHandler.Get)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	categories := api.Group("/categories")
	categories.Use(invalidateStats)
	{
		categories.GET("", categoryHandler.List)
		categories.POST("", categoryHandler.Create)
		categories.GET("/:id", categoryHandler.Get)
		categories.PUT("/:id", categoryHandler.Update)
		categories.DELETE("/:id", categoryHandler.Delete)
	}

	// 管理员接口
	adminGroup := api.Group("/admin")
	adminGroup.Use(adminOnly, invalidateStats)
	{
		adminGroup.GET("/users", adminHandler.ListUsers)
		adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
		adminGroup.GET("/tasks", adminHandler.ListTasks)
		adminGroup.DELETE("/tasks/:id", adminHandler.DeleteTask)
		adminGroup.GET("/stats", adminHandler.Stats)
		adminGroup.POST("/categories/reconcile", adminHandler.ReconcileCategories)
	}

	return r
}
