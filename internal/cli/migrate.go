package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maestro-drills/backend/internal/database"
)

func newMigrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := database.Migrate(databaseConfig(cfg)); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}
