package main

import (
	"os"

	"github.com/spf13/cobra"
)

// databaseURL is shared by the commands that talk to Postgres.
var databaseURL string

// NewRootCmd creates the root command for campusctl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campusctl",
		Short: "Operator tooling for the campus auth service",
		Long: `campusctl mints local session tokens, hashes passwords and
manages the Postgres schema, bootstrap admin and audit trail.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres DSN (defaults to $DATABASE_URL)")

	cmd.AddCommand(NewTokenCmd())
	cmd.AddCommand(NewHashPasswordCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedAdminCmd())
	cmd.AddCommand(NewAuditCmd())

	return cmd
}
