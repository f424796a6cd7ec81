package redis_limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// incrScript 原子地自增并在首次写入时设置过期时间，返回当前计数
var incrScript = redis.NewScript(
	`local count = redis.call('INCR', KEYS[1])
	if tonumber(count) == 1 then
		redis.call('EXPIRE', KEYS[1], tonumber(ARGV[1]))
	end
	return count`,
)

// RedisLimiter 基于Redis的固定窗口计数器
// 用于限制同一标识在窗口期内的失败次数
type RedisLimiter struct {
	client    *redis.Client
	maxHits   int
	keyPrefix string
	window    time.Duration
}

// NewRedisLimiter 创建基于Redis的固定窗口限制器
func NewRedisLimiter(client *redis.Client, maxHits int, keyPrefix string, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		maxHits:   maxHits,
		keyPrefix: keyPrefix,
		window:    window,
	}
}

// Allowed 当前窗口内计数是否仍低于上限
func (rl *RedisLimiter) Allowed(ctx context.Context, key string) (bool, error) {
	current, err := rl.GetCurrent(ctx, key)
	if err != nil {
		return false, err
	}
	return current < rl.maxHits, nil
}

// Hit 记录一次并返回窗口内的累计次数
func (rl *RedisLimiter) Hit(ctx context.Context, key string) (int, error) {
	seconds := int(rl.window.Seconds())
	if seconds < 1 {
		seconds = 1
	}

	result, err := incrScript.Run(ctx, rl.client, []string{rl.keyPrefix + key}, seconds).Result()
	if err != nil {
		return 0, fmt.Errorf("run limiter script: %w", err)
	}
	return int(result.(int64)), nil
}

// Reset 清除计数
func (rl *RedisLimiter) Reset(ctx context.Context, key string) error {
	return rl.client.Del(ctx, rl.keyPrefix+key).Err()
}

// GetCurrent 获取当前计数
func (rl *RedisLimiter) GetCurrent(ctx context.Context, key string) (int, error) {
	current, err := rl.client.Get(ctx, rl.keyPrefix+key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get limiter count: %w", err)
	}
	return current, nil
}

// GetMaxHits 获取窗口内允许的最大次数
func (rl *RedisLimiter) GetMaxHits() int {
	return rl.maxHits
}
