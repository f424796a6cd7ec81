package service

import (
	"context"
	"testing"
	"time"

	"task-go/internal/dto"
	"task-go/internal/models"
	"task-go/internal/repository"
	"task-go/internal/testutil"
	"task-go/internal/utils"

	"github.com/stretchr/testify/require"
)

// fixedClock 可手动推进的时钟
type fixedClock struct {
	t time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time { return c.t }

func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	store      *repository.Store
	clock      *fixedClock
	tasks      *TaskService
	categories *CategoryService
	users      *UserService
	auth       *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore(t)
	clock := newFixedClock()
	jwt := utils.NewJWTManager("test-secret", "HS256", time.Hour)

	return &fixture{
		store:      store,
		clock:      clock,
		tasks:      NewTaskService(store, nil, clock.Now),
		categories: NewCategoryService(store, nil, clock.Now),
		users:      NewUserService(store, clock.Now),
		auth:       NewAuthService(store, jwt, nil, nil, clock.Now),
	}
}

func (f *fixture) signup(t *testing.T, username string) *models.User {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), &dto.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password1",
	})
	require.NoError(t, err)
	u := resp.User
	return &u
}

func (f *fixture) category(t *testing.T, userID, name string) *models.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), &dto.CreateCategoryRequest{Name: name, UserID: userID})
	require.NoError(t, err)
	return c
}

func (f *fixture) task(t *testing.T, userID string, categoryID *string) *models.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), &dto.CreateTaskRequest{
		Title: "task", UserID: userID, CategoryID: categoryID,
	})
	require.NoError(t, err)
	return task
}

func (f *fixture) taskCount(t *testing.T, categoryID string) int64 {
	t.Helper()
	c, err := f.store.Categories.GetByID(context.Background(), categoryID)
	require.NoError(t, err)
	return c.TaskCount
}

// assertCountersConsistent 每个分类的 task_count 等于实时任务数
func (f *fixture) assertCountersConsistent(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	categories, err := f.store.Categories.List(ctx, "")
	require.NoError(t, err)
	for _, c := range categories {
		live, err := f.store.Tasks.CountByCategory(ctx, c.ID)
		require.NoError(t, err)
		require.Equal(t, live, c.TaskCount, "category %s (%s)", c.Name, c.ID)
	}
}

func strPtr(s string) *string { return &s }
