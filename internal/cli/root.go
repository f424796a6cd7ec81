// Package cli 命令行入口：serve、migrate、reconcile、version
package cli

import (
	"fmt"
	"os"

	"task-go/internal/config"
	"task-go/internal/models"
	"task-go/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "task-go",
	Short:         "To-do task backend with categories and admin statistics",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./config.yaml or ./config/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(versionCmd)
}

// bootstrap 加载配置、初始化日志并打开数据库
func bootstrap() (*config.Config, *logrus.Logger, *repository.Store, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := NewLogger(&cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := models.OpenDB(&cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, logger, repository.NewStore(db), nil
}
