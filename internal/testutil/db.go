// Package testutil 测试用的内存数据库
package testutil

import (
	"testing"

	"task-go/internal/config"
	"task-go/internal/models"
	"task-go/internal/repository"

	"github.com/stretchr/testify/require"
)

// NewStore 返回已迁移的内存sqlite Store，测试结束自动关闭
func NewStore(t testing.TB) *repository.Store {
	t.Helper()

	db, err := models.OpenDB(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	store := repository.NewStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
