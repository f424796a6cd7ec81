package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// StatsRepository 管理后台的只读聚合查询
type StatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计Repository
func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Condition 统计查询的WHERE条件
type Condition = sq.Sqlizer

// Since 列值不早于 t
func Since(column string, t time.Time) Condition {
	return sq.GtOrEq{column: t.UTC()}
}

// Before 列值早于 t
func Before(column string, t time.Time) Condition {
	return sq.Lt{column: t.UTC()}
}

// Equals 列值等于 v
func Equals(column string, v interface{}) Condition {
	return sq.Eq{column: v}
}

// BuildCount 生成 COUNT(*) 查询，占位符统一用 ?，由gorm按方言转换
func BuildCount(table string, conds ...Condition) (string, []interface{}, error) {
	q := sq.Select("COUNT(*)").From(table)
	for _, c := range conds {
		q = q.Where(c)
	}
	return q.ToSql()
}

// Count 统计表中满足全部条件的行数
func (r *StatsRepository) Count(ctx context.Context, table string, conds ...Condition) (int64, error) {
	query, args, err := BuildCount(table, conds...)
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int64
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
