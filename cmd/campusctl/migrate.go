package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

const defaultDBTimeout = 30 * time.Second

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending migrations to the PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			cmd.Println("Running migrations...")
			pool, err := openMigrated(ctx)
			if err != nil {
				return err
			}
			defer pool.Close() //nolint:errcheck

			cmd.Println("Migrations completed successfully")
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", defaultDBTimeout, "timeout for database operations")

	return cmd
}
