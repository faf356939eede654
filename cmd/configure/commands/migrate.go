package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Create or update the schema for the configured DATABASE_DRIVER. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := db.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database.\n", db.Dialect())
			return nil
		},
	}
}
