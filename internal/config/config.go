package config

import (
	"fmt"
	"time"
)

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Admin     AdminConfig     `mapstructure:"admin"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ProductionMode  bool   `mapstructure:"production_mode"`
	ReadTimeout     int    `mapstructure:"read_timeout_seconds"`
	WriteTimeout    int    `mapstructure:"write_timeout_seconds"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout_seconds"`
}

// GetAddress 获取服务器地址
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GetShutdownDuration 获取优雅关闭等待时间
func (s *ServerConfig) GetShutdownDuration() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // sqlite, postgres, mysql
	Path         string `mapstructure:"path"`
	DSN          string `mapstructure:"dsn"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	DB                 int    `mapstructure:"db"`
	Password           string `mapstructure:"password"`
	StatsCacheSeconds  int    `mapstructure:"stats_cache_seconds"`
	LoginMaxFailures   int    `mapstructure:"login_max_failures"`
	LoginWindowSeconds int    `mapstructure:"login_window_seconds"`
}

// GetAddress 获取Redis地址
func (r *RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GetStatsCacheTTL 统计缓存有效期
func (r *RedisConfig) GetStatsCacheTTL() time.Duration {
	return time.Duration(r.StatsCacheSeconds) * time.Second
}

// GetLoginWindow 登录失败计数窗口
func (r *RedisConfig) GetLoginWindow() time.Duration {
	return time.Duration(r.LoginWindowSeconds) * time.Second
}

// JWTConfig JWT配置
type JWTConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	Algorithm     string `mapstructure:"algorithm"`
	ExpireMinutes int    `mapstructure:"expire_minutes"`
}

// GetExpireDuration 获取过期时间
func (j *JWTConfig) GetExpireDuration() time.Duration {
	return time.Duration(j.ExpireMinutes) * time.Minute
}

// AdminConfig 初始管理员配置，仅在库中没有管理员时使用
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// CORSConfig CORS配置
type CORSConfig struct {
	Origins          []string `mapstructure:"origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
}

// RateLimitConfig 按IP限流配置，RequestsPerSecond为0表示关闭
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}
