package service

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"task-go/internal/dto"
	"task-go/internal/models"
	"task-go/internal/repository"
	"task-go/internal/utils"

	"github.com/sirupsen/logrus"
)

// TaskService 任务服务
// 所有改变任务 category_id 或删除任务的操作都在同一事务内调整分类计数
type TaskService struct {
	store  *repository.Store
	logger logrus.FieldLogger
	now    Clock
}

// NewTaskService 创建任务服务
func NewTaskService(store *repository.Store, logger logrus.FieldLogger, now Clock) *TaskService {
	if logger == nil {
		logger = discardLogger()
	}
	if now == nil {
		now = SystemClock
	}
	return &TaskService{store: store, logger: logger, now: now}
}

// Create 创建任务，指定分类时该分类计数加一
func (s *TaskService) Create(ctx context.Context, req *dto.CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, utils.NewValidationError("title is required")
	}
	if req.UserID == "" {
		return nil, utils.NewValidationError("user_id is required")
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := s.now()
	task := &models.Task{
		Title:       title,
		UserID:      req.UserID,
		CategoryID:  normalizeRef(req.CategoryID),
		Description: req.Description,
		Priority:    priority,
		Status:      models.StatusPending,
		Subtasks:    models.JSONList{},
		Tags:        models.StringSet{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Deadline != nil && !req.Deadline.IsZero() {
		deadline := req.Deadline.Time
		task.Deadline = &deadline
	}

	if err := utils.ValidateStruct(task); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := lookupUser(ctx, tx, task.UserID); err != nil {
			return err
		}
		if task.CategoryID != nil {
			if err := s.checkCategory(ctx, tx, *task.CategoryID, task.UserID); err != nil {
				return err
			}
		}

		if err := tx.Tasks.Create(ctx, task); err != nil {
			return fmt.Errorf("create task: %w", err)
		}

		if task.CategoryID != nil {
			if err := tx.Categories.AdjustTaskCount(ctx, *task.CategoryID, 1); err != nil {
				return fmt.Errorf("increment category count: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// Get 获取单个任务
func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.store.Tasks.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, utils.NewNotFoundError("task not found")
	}
	return task, err
}

// List 获取任务列表，userID为空时返回所有任务
func (s *TaskService) List(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.store.Tasks.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// MaxPerPage 分页查询每页上限
const MaxPerPage = 100

// ListPage 分页获取所有用户的任务
func (s *TaskService) ListPage(ctx context.Context, page, perPage int) (*dto.TaskPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = 20
	}

	tasks, total, err := s.store.Tasks.ListPage(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return &dto.TaskPage{Items: tasks, Total: total, Page: page, PerPage: perPage}, nil
}

// Update 部分更新任务
// category_id 变化时旧分类减一、新分类加一，与任务更新在同一事务内完成
func (s *TaskService) Update(ctx context.Context, id string, req *dto.UpdateTaskRequest) (*models.Task, error) {
	var updated *models.Task

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		task, err := tx.Tasks.GetByID(ctx, id)
		if repository.IsNotFound(err) {
			return utils.NewNotFoundError("task not found")
		}
		if err != nil {
			return err
		}

		updates, err := taskChanges(task, req)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return utils.NewNoOpError("no changes to apply")
		}

		if newRef, ok := updates["category_id"]; ok {
			oldID := task.CategoryID
			newID, _ := newRef.(*string)

			if newID != nil {
				if err := s.checkCategory(ctx, tx, *newID, task.UserID); err != nil {
					return err
				}
			}
			if oldID != nil {
				if err := s.decrement(ctx, tx, *oldID); err != nil {
					return err
				}
			}
			if newID != nil {
				if err := tx.Categories.AdjustTaskCount(ctx, *newID, 1); err != nil {
					return fmt.Errorf("increment category count: %w", err)
				}
			}
		}

		updates["updated_at"] = s.now()
		if err := tx.Tasks.Updates(ctx, id, updates); err != nil {
			return fmt.Errorf("update task: %w", err)
		}

		updated, err = tx.Tasks.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete 删除任务，先把所属分类计数减一
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		task, err := tx.Tasks.GetByID(ctx, id)
		if repository.IsNotFound(err) {
			return utils.NewNotFoundError("task not found")
		}
		if err != nil {
			return err
		}

		if task.CategoryID != nil {
			if err := s.decrement(ctx, tx, *task.CategoryID); err != nil {
				return err
			}
		}

		if err := tx.Tasks.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
}

// checkCategory 分类必须存在且属于任务的所有者
func (s *TaskService) checkCategory(ctx context.Context, tx *repository.Store, categoryID, userID string) error {
	category, err := tx.Categories.GetByID(ctx, categoryID)
	if repository.IsNotFound(err) {
		return utils.NewValidationError("category %s does not exist", categoryID)
	}
	if err != nil {
		return err
	}
	if category.UserID != userID {
		return utils.NewValidationError("category %s belongs to another user", categoryID)
	}
	return nil
}

// decrement 分类已不存在时只记录日志，任务本身的修改照常进行
func (s *TaskService) decrement(ctx context.Context, tx *repository.Store, categoryID string) error {
	err := tx.Categories.AdjustTaskCount(ctx, categoryID, -1)
	if repository.IsNotFound(err) {
		s.logger.WithField("category_id", categoryID).Warn("task referenced a missing category")
		return nil
	}
	if err != nil {
		return fmt.Errorf("decrement category count: %w", err)
	}
	return nil
}

// taskChanges 计算与当前值不同的字段
func taskChanges(task *models.Task, req *dto.UpdateTaskRequest) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if req.Title.Set {
		title := strings.TrimSpace(req.Title.Value)
		if req.Title.Null || title == "" {
			return nil, utils.NewValidationError("title must not be empty")
		}
		if title != task.Title {
			updates["title"] = title
		}
	}

	if req.Description.Set && req.Description.Value != task.Description {
		updates["description"] = req.Description.Value
	}

	if req.Priority.Set {
		if !validPriority(req.Priority.Value) {
			return nil, utils.NewValidationError("priority must be one of [low medium high]")
		}
		if req.Priority.Value != task.Priority {
			updates["priority"] = req.Priority.Value
		}
	}

	status, err := requestedStatus(req)
	if err != nil {
		return nil, err
	}
	if status != "" && status != task.Status {
		updates["status"] = status
	}

	if req.Deadline.Set {
		switch {
		case req.Deadline.Null || req.Deadline.Value.IsZero():
			if task.Deadline != nil {
				updates["deadline"] = nil
			}
		case task.Deadline == nil || !task.Deadline.Equal(req.Deadline.Value.Time):
			updates["deadline"] = req.Deadline.Value.Time
		}
	}

	if req.CategoryID.Set {
		var newID *string
		if !req.CategoryID.Null {
			newID = normalizeRef(&req.CategoryID.Value)
		}
		if !sameRef(task.CategoryID, newID) {
			updates["category_id"] = newID
		}
	}

	if req.Subtasks.Set {
		subtasks := models.JSONList(req.Subtasks.Value)
		if subtasks == nil {
			subtasks = models.JSONList{}
		}
		if !reflect.DeepEqual(normalizeList(task.Subtasks), subtasks) {
			updates["subtasks"] = subtasks
		}
	}

	if req.Tags.Set {
		tags := models.NewStringSet(req.Tags.Value)
		if !tags.Equal(task.Tags) {
			updates["tags"] = tags
		}
	}

	return updates, nil
}

// requestedStatus status 优先，其次是旧版 completed 布尔值
func requestedStatus(req *dto.UpdateTaskRequest) (string, error) {
	if req.Status.Set && !req.Status.Null {
		if req.Status.Value != models.StatusPending && req.Status.Value != models.StatusCompleted {
			return "", utils.NewValidationError("status must be one of [pending completed]")
		}
		return req.Status.Value, nil
	}
	if req.Completed.Set && !req.Completed.Null {
		if req.Completed.Value {
			return models.StatusCompleted, nil
		}
		return models.StatusPending, nil
	}
	return "", nil
}

func validPriority(p string) bool {
	return p == models.PriorityLow || p == models.PriorityMedium || p == models.PriorityHigh
}

// normalizeRef 空字符串视为未关联
func normalizeRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	v := strings.TrimSpace(*ref)
	if v == "" {
		return nil
	}
	return &v
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func normalizeList(l models.JSONList) models.JSONList {
	if l == nil {
		return models.JSONList{}
	}
	return l
}
