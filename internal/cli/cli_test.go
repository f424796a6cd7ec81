package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"task-go/internal/config"
	"task-go/internal/models"
	"task-go/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tasks.db")
	cfgPath := filepath.Join(dir, "config.yaml")

	content := fmt.Sprintf(`
database:
  driver: sqlite
  path: %s
jwt:
  secret_key: cli-test-secret
log:
  level: error
`, dbPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath, dbPath
}

func TestVersionCommand(t *testing.T) {
	out := run(t, "version")
	assert.Contains(t, out, "task-go version "+Version)
	assert.Contains(t, out, "Go version")
}

func TestMigrateAndReconcile(t *testing.T) {
	cfgPath, dbPath := writeConfig(t)

	run(t, "--config", cfgPath, "migrate")

	db, err := models.OpenDB(&config.DatabaseConfig{Driver: "sqlite", Path: dbPath})
	require.NoError(t, err)
	store := repository.NewStore(db)

	ctx := context.Background()
	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, store.Users.Create(ctx, user))
	category := &models.Category{UserID: user.ID, Name: "Work", TaskCount: 7}
	require.NoError(t, store.Categories.Create(ctx, category))
	require.NoError(t, store.Close())

	out := run(t, "--config", cfgPath, "reconcile")
	assert.Contains(t, out, "checked 1 categories, corrected 1")
}

func TestNewLogger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	logger, err := NewLogger(&config.LogConfig{Level: "warn", File: logFile, MaxSizeMB: 1})
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Warn("written")
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written"`)

	_, err = NewLogger(&config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
