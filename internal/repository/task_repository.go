package repository

import (
	"context"

	"task-go/internal/models"

	"gorm.io/gorm"
)

// TaskRepository 任务数据访问层
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建任务Repository
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create 创建任务
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID 根据ID获取任务
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List 获取任务列表，userID为空时返回全部
func (r *TaskRepository) List(ctx context.Context, userID string) ([]models.Task, error) {
	var tasks []models.Task
	query := r.db.WithContext(ctx)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	err := query.Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

// ListPage 分页获取所有任务
func (r *TaskRepository) ListPage(ctx context.Context, offset, limit int) ([]models.Task, int64, error) {
	var tasks []models.Task
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Task{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&tasks).Error
	return tasks, total, err
}

// Updates 按字段更新
func (r *TaskRepository) Updates(ctx context.Context, id string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除任务
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByCategory 实时统计引用该分类的任务数
func (r *TaskRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// CountGroupedByCategory 按分类分组统计任务数
func (r *TaskRepository) CountGroupedByCategory(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		CategoryID string
		Total      int64
	}
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Select("category_id, COUNT(*) AS total").
		Where("category_id IS NOT NULL").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Total
	}
	return counts, nil
}
