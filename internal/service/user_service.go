package service

import (
	"context"
	"fmt"
	"reflect"

	"task-go/internal/dto"
	"task-go/internal/models"
	"task-go/internal/repository"
	"task-go/internal/utils"
)

// UserService 用户资料和管理员的用户管理
type UserService struct {
	store *repository.Store
	now   Clock
}

// NewUserService 创建用户服务
func NewUserService(store *repository.Store, now Clock) *UserService {
	if now == nil {
		now = SystemClock
	}
	return &UserService{store: store, now: now}
}

// Get 获取用户，密码字段不会序列化
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, utils.NewNotFoundError("user not found")
	}
	return user, err
}

// List 获取所有用户
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Update 更新设置和/或密码，修改密码需要提供当前密码
func (s *UserService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*models.User, error) {
	if !req.Settings.Set && !req.Password.Set {
		return nil, utils.NewNoOpError("no recognized fields supplied")
	}

	var updated *models.User

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.GetByID(ctx, id)
		if repository.IsNotFound(err) {
			return utils.NewNotFoundError("user not found")
		}
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})

		if req.Settings.Set {
			settings := models.JSONMap(req.Settings.Value)
			if req.Settings.Null || settings == nil {
				settings = models.DefaultSettings()
			}
			if !reflect.DeepEqual(map[string]interface{}(settings), map[string]interface{}(user.Settings)) {
				updates["settings"] = settings
			}
		}

		if req.Password.Set {
			if utils.CheckPassword(req.CurrentPassword, user.PasswordHash) != nil {
				return utils.NewAuthError("current password is incorrect")
			}
			if len(req.Password.Value) < MinPasswordLength {
				return utils.NewValidationError("password must be at least %d characters", MinPasswordLength)
			}
			hashed, err := utils.HashPassword(req.Password.Value)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			updates["password_hash"] = hashed
		}

		if len(updates) == 0 {
			return utils.NewNoOpError("no changes to apply")
		}

		updates["updated_at"] = s.now()
		if err := tx.Users.Updates(ctx, id, updates); err != nil {
			return fmt.Errorf("update user: %w", err)
		}

		updated, err = tx.Users.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete 管理员删除用户，不能删除自己
// 任务和分类对用户是弱引用，不级联删除
func (s *UserService) Delete(ctx context.Context, requesterID, targetID string) error {
	if requesterID == targetID {
		return utils.NewAuthorizationError("admins cannot delete themselves")
	}

	err := s.store.Users.Delete(ctx, targetID)
	if repository.IsNotFound(err) {
		return utils.NewNotFoundError("user not found")
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
