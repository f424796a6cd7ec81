package cli

import (
	"task-go/internal/models"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, store, err := bootstrap()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := models.AutoMigrate(store.DB()); err != nil {
			return err
		}
		logger.WithField("driver", cfg.Database.Driver).Info("schema migrated")
		return nil
	},
}
