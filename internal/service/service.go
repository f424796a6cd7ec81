package service

import (
	"context"
	"io"
	"math"
	"time"

	"task-go/internal/models"
	"task-go/internal/repository"
	"task-go/internal/utils"

	"github.com/sirupsen/logrus"
)

// Clock 返回当前时间，测试中可替换
type Clock func() time.Time

// SystemClock 使用UTC的系统时钟
func SystemClock() time.Time {
	return time.Now().UTC()
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// lookupUser 按ID加载用户，不存在时返回 ValidationError
func lookupUser(ctx context.Context, store *repository.Store, userID string) (*models.User, error) {
	user, err := store.Users.GetByID(ctx, userID)
	if repository.IsNotFound(err) {
		return nil, utils.NewValidationError("user %s does not exist", userID)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// percentage 保留一位小数，分母为0时返回0
func percentage(n, d int64) float64 {
	if d == 0 {
		return 0
	}
	return roundOneDecimal(float64(n) / float64(d) * 100)
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
