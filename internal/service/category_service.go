package service

import (
	"context"
	"fmt"
	"strings"

	"task-go/internal/dto"
	"task-go/internal/models"
	"task-go/internal/repository"
	"task-go/internal/utils"

	"github.com/sirupsen/logrus"
)

// CategoryService 分类服务
type CategoryService struct {
	store  *repository.Store
	logger logrus.FieldLogger
	now    Clock
}

// NewCategoryService 创建分类服务
func NewCategoryService(store *repository.Store, logger logrus.FieldLogger, now Clock) *CategoryService {
	if logger == nil {
		logger = discardLogger()
	}
	if now == nil {
		now = SystemClock
	}
	return &CategoryService{store: store, logger: logger, now: now}
}

// Create 创建分类，同一用户下名称唯一
func (s *CategoryService) Create(ctx context.Context, req *dto.CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, utils.NewValidationError("name is required")
	}
	if req.UserID == "" {
		return nil, utils.NewValidationError("user_id is required")
	}

	color := req.Color
	if color == "" {
		color = models.DefaultCategoryColor
	}

	now := s.now()
	category := &models.Category{
		UserID:      req.UserID,
		Name:        name,
		Color:       color,
		Icon:        req.Icon,
		Description: req.Description,
		TaskCount:   0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := utils.ValidateStruct(category); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := lookupUser(ctx, tx, category.UserID); err != nil {
			return err
		}

		exists, err := tx.Categories.ExistsByName(ctx, category.UserID, name, "")
		if err != nil {
			return fmt.Errorf("check category name: %w", err)
		}
		if exists {
			return utils.NewUniquenessError("category %q already exists", name)
		}

		if err := tx.Categories.Create(ctx, category); err != nil {
			if repository.IsDuplicate(err) {
				return utils.NewUniquenessError("category %q already exists", name)
			}
			return fmt.Errorf("create category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return category, nil
}

// Get 获取单个分类
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.store.Categories.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, utils.NewNotFoundError("category not found")
	}
	return category, err
}

// List 获取分类列表，userID为空时返回所有分类
func (s *CategoryService) List(ctx context.Context, userID string) ([]models.Category, error) {
	categories, err := s.store.Categories.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Update 部分更新分类
// 值与当前相同时不写库，重复调用结果一致
func (s *CategoryService) Update(ctx context.Context, id string, req *dto.UpdateCategoryRequest) (*models.Category, error) {
	if req.Empty() {
		return nil, utils.NewNoOpError("no recognized fields supplied")
	}

	var result *models.Category

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		category, err := tx.Categories.GetByID(ctx, id)
		if repository.IsNotFound(err) {
			return utils.NewNotFoundError("category not found")
		}
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})

		if req.Name.Set {
			name := strings.TrimSpace(req.Name.Value)
			if req.Name.Null || name == "" {
				return utils.NewValidationError("name must not be empty")
			}
			if name != category.Name {
				exists, err := tx.Categories.ExistsByName(ctx, category.UserID, name, category.ID)
				if err != nil {
					return fmt.Errorf("check category name: %w", err)
				}
				if exists {
					return utils.NewUniquenessError("category %q already exists", name)
				}
				updates["name"] = name
			}
		}
		if req.Color.Set {
			color := req.Color.Value
			if color == "" {
				color = models.DefaultCategoryColor
			}
			if color != category.Color {
				updates["color"] = color
			}
		}
		if req.Icon.Set && req.Icon.Value != category.Icon {
			updates["icon"] = req.Icon.Value
		}
		if req.Description.Set && req.Description.Value != category.Description {
			updates["description"] = req.Description.Value
		}

		if len(updates) == 0 {
			result = category
			return nil
		}

		updates["updated_at"] = s.now()
		if err := tx.Categories.Updates(ctx, id, updates); err != nil {
			if repository.IsDuplicate(err) {
				return utils.NewUniquenessError("category already exists")
			}
			return fmt.Errorf("update category: %w", err)
		}

		result, err = tx.Categories.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Delete 删除分类
// 以实时统计的任务数为准，不信任缓存的 task_count
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Categories.GetByID(ctx, id); err != nil {
			if repository.IsNotFound(err) {
				return utils.NewNotFoundError("category not found")
			}
			return err
		}

		count, err := tx.Tasks.CountByCategory(ctx, id)
		if err != nil {
			return fmt.Errorf("count category tasks: %w", err)
		}
		if count > 0 {
			return utils.NewConflictError("category has existing tasks")
		}

		if err := tx.Categories.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

// Reconcile 按实时任务数重算所有分类的 task_count
func (s *CategoryService) Reconcile(ctx context.Context) (*dto.ReconcileResponse, error) {
	result := &dto.ReconcileResponse{}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		categories, err := tx.Categories.List(ctx, "")
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}

		counts, err := tx.Tasks.CountGroupedByCategory(ctx)
		if err != nil {
			return fmt.Errorf("count tasks by category: %w", err)
		}

		for _, category := range categories {
			result.Checked++
			live := counts[category.ID]
			if live == category.TaskCount {
				continue
			}

			s.logger.WithFields(logrus.Fields{
				"category_id": category.ID,
				"cached":      category.TaskCount,
				"live":        live,
			}).Warn("correcting drifted category task_count")

			if err := tx.Categories.SetTaskCount(ctx, category.ID, live); err != nil {
				return fmt.Errorf("set task count: %w", err)
			}
			result.Corrected++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
