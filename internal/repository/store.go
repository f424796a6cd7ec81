package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = gorm.ErrRecordNotFound

// IsNotFound 判断是否记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate 判断是否违反唯一约束
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// Store 数据访问入口，持有所有Repository
// 进程启动时创建，关闭时调用 Close
type Store struct {
	db *gorm.DB

	Users      *UserRepository
	Categories *CategoryRepository
	Tasks      *TaskRepository
	Stats      *StatsRepository
}

// NewStore 创建Store
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Users:      NewUserRepository(db),
		Categories: NewCategoryRepository(db),
		Tasks:      NewTaskRepository(db),
		Stats:      NewStatsRepository(db),
	}
}

// DB 返回底层连接
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction 在同一事务内执行fn，fn返回错误时回滚
// fn 内只能使用传入的 tx，不能再用外层 Store，否则 sqlite 单连接下会死锁
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Ping 检查数据库连通性
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
