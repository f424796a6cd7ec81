package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"task-go/internal/config"
	"task-go/internal/models"
	"task-go/internal/router"
	"task-go/internal/service"
	"task-go/internal/utils"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, store, err := bootstrap()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := models.AutoMigrate(store.DB()); err != nil {
			return err
		}
	}

	redisClient := connectRedis(ctx, &cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.SecretKey,
		cfg.JWT.Algorithm,
		cfg.JWT.GetExpireDuration(),
	)

	// 初始化管理员账户
	authService := service.NewAuthService(store, jwtManager, nil, logger, service.SystemClock)
	if err := authService.InitAdmin(ctx, &cfg.Admin); err != nil {
		logger.WithError(err).Warn("init admin failed")
	}

	r := router.SetupRouter(cfg, jwtManager, logger, store, redisClient, service.SystemClock)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":   srv.Addr,
			"driver": cfg.Database.Driver,
			"redis":  redisClient != nil,
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 等待中断信号以实现优雅关闭
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GetShutdownDuration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// connectRedis Redis不可用时返回nil，服务在没有缓存和登录限制的情况下继续运行
func connectRedis(ctx context.Context, cfg *config.RedisConfig, logger logrus.FieldLogger) *redis.Client {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddress(),
		DB:       cfg.DB,
		Password: cfg.Password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).WithField("addr", cfg.GetAddress()).Warn("redis unavailable, continuing without it")
		_ = client.Close()
		return nil
	}
	return client
}
