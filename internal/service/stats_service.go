package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"task-go/internal/dto"
	"task-go/internal/models"
	"task-go/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// StatsCacheKey 统计结果在Redis中的key
const StatsCacheKey = "taskgo:admin:stats"

// 统计窗口
const (
	windowDay   = 24 * time.Hour
	windowWeek  = 7 * 24 * time.Hour
	windowMonth = 30 * 24 * time.Hour
)

// StatsService 管理后台只读统计
type StatsService struct {
	store       *repository.Store
	redisClient *redis.Client
	cacheTTL    time.Duration
	logger      logrus.FieldLogger
	now         Clock
}

// NewStatsService 创建统计服务，redisClient 为 nil 时不缓存
func NewStatsService(store *repository.Store, redisClient *redis.Client, cacheTTL time.Duration, logger logrus.FieldLogger, now Clock) *StatsService {
	if logger == nil {
		logger = discardLogger()
	}
	if now == nil {
		now = SystemClock
	}
	return &StatsService{
		store:       store,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
		logger:      logger,
		now:         now,
	}
}

// Compute 计算统计结果，优先读取缓存
func (s *StatsService) Compute(ctx context.Context) (*dto.AdminStats, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	stats, err := s.aggregate(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, stats)
	return stats, nil
}

func (s *StatsService) aggregate(ctx context.Context) (*dto.AdminStats, error) {
	now := s.now()
	c := &counter{ctx: ctx, repo: s.store.Stats}

	stats := &dto.AdminStats{GeneratedAt: now}

	us := &stats.UserStats
	us.Total = c.count("users")
	us.Admins = c.count("users", repository.Equals("role", models.RoleAdmin))
	us.New24h = c.count("users", repository.Since("created_at", now.Add(-windowDay)))
	us.New7d = c.count("users", repository.Since("created_at", now.Add(-windowWeek)))
	us.New30d = c.count("users", repository.Since("created_at", now.Add(-windowMonth)))

	ts := &stats.TaskStats
	ts.Total = c.count("tasks")
	ts.Completed = c.count("tasks", repository.Equals("status", models.StatusCompleted))
	ts.Pending = c.count("tasks", repository.Equals("status", models.StatusPending))
	ts.Created24h = c.count("tasks", repository.Since("created_at", now.Add(-windowDay)))
	ts.Created7d = c.count("tasks", repository.Since("created_at", now.Add(-windowWeek)))
	ts.Created30d = c.count("tasks", repository.Since("created_at", now.Add(-windowMonth)))
	ts.Updated24h = c.count("tasks", repository.Since("updated_at", now.Add(-windowDay)))
	ts.Updated7d = c.count("tasks", repository.Since("updated_at", now.Add(-windowWeek)))
	ts.Updated30d = c.count("tasks", repository.Since("updated_at", now.Add(-windowMonth)))
	ts.Overdue = c.count("tasks",
		repository.Equals("status", models.StatusPending),
		repository.Before("deadline", now),
	)

	categories := c.count("categories")

	if c.err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", c.err)
	}

	us.AdminRatio = percentage(us.Admins, us.Total)
	ts.CompletionRate = percentage(ts.Completed, ts.Total)

	stats.Users = us.Total
	stats.Tasks = ts.Total
	stats.Categories = categories
	return stats, nil
}

// counter 记录第一个错误，之后的查询直接跳过
type counter struct {
	ctx  context.Context
	repo *repository.StatsRepository
	err  error
}

func (c *counter) count(table string, conds ...repository.Condition) int64 {
	if c.err != nil {
		return 0
	}
	n, err := c.repo.Count(c.ctx, table, conds...)
	if err != nil {
		c.err = err
	}
	return n
}

func (s *StatsService) fromCache(ctx context.Context) *dto.AdminStats {
	if s.redisClient == nil || s.cacheTTL <= 0 {
		return nil
	}

	data, err := s.redisClient.Get(ctx, StatsCacheKey).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		s.logger.WithError(err).Warn("read stats cache")
		return nil
	}

	var stats dto.AdminStats
	if err := json.Unmarshal(data, &stats); err != nil {
		s.logger.WithError(err).Warn("decode stats cache")
		return nil
	}
	return &stats
}

func (s *StatsService) toCache(ctx context.Context, stats *dto.AdminStats) {
	if s.redisClient == nil || s.cacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		s.logger.WithError(err).Warn("encode stats cache")
		return
	}
	if err := s.redisClient.Set(ctx, StatsCacheKey, data, s.cacheTTL).Err(); err != nil {
		s.logger.WithError(err).Warn("write stats cache")
	}
}

// Invalidate 清除缓存的统计结果
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, StatsCacheKey).Err(); err != nil {
		s.logger.WithError(err).Warn("invalidate stats cache")
	}
}
