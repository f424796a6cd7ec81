package cli

import (
	"fmt"

	"task-go/internal/service"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute every category's task_count from the task table",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, store, err := bootstrap()
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := service.NewCategoryService(store, logger, nil).Reconcile(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "checked %d categories, corrected %d\n", result.Checked, result.Corrected)
		return nil
	},
}
