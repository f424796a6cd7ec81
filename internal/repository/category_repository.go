package repository

import (
	"context"

	"task-go/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository 分类数据访问层
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类Repository
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create 创建分类
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// GetByID 根据ID获取分类
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// List 获取分类列表，userID为空时返回全部
func (r *CategoryRepository) List(ctx context.Context, userID string) ([]models.Category, error) {
	var categories []models.Category
	query := r.db.WithContext(ctx)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	err := query.Order("name ASC").Find(&categories).Error
	return categories, err
}

// ExistsByName 同一用户下是否已有同名分类，excludeID 非空时排除该分类本身
func (r *CategoryRepository) ExistsByName(ctx context.Context, userID, name, excludeID string) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("user_id = ? AND name = ?", userID, name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// Updates 按字段更新
func (r *CategoryRepository) Updates(ctx context.Context, id string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustTaskCount 原子地增减任务计数，不修改 updated_at
func (r *CategoryRepository) AdjustTaskCount(ctx context.Context, id string, delta int) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", id).
		UpdateColumn("task_count", gorm.Expr("task_count + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetTaskCount 直接写入任务计数（用于校正）
func (r *CategoryRepository) SetTaskCount(ctx context.Context, id string, count int64) error {
	return r.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", id).
		UpdateColumn("task_count", count).Error
}

// Delete 删除分类
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
