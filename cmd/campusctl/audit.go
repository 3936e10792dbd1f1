package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	id "campus/pkg/domain"
	audit "campus/pkg/platform/audit"
	auditpg "campus/pkg/platform/audit/store/postgres"
)

// NewAuditCmd creates the audit subcommand.
func NewAuditCmd() *cobra.Command {
	var (
		limit  int
		userID string
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent audit events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultDBTimeout)
			defer cancel()

			pool, err := openMigrated(ctx)
			if err != nil {
				return err
			}
			defer pool.Close() //nolint:errcheck

			store := auditpg.New(pool.DB())
			var events []audit.Event
			if userID != "" {
				parsed, perr := uuid.Parse(userID)
				if perr != nil {
					return fmt.Errorf("invalid --user: %w", perr)
				}
				events, err = store.ListByUser(ctx, id.UserID(parsed))
			} else {
				events, err = store.ListRecent(ctx, limit)
			}
			if err != nil {
				return err
			}
			return printEvents(cmd, events)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "number of events to show")
	cmd.Flags().StringVar(&userID, "user", "", "only events for this user id")

	return cmd
}

func printEvents(cmd *cobra.Command, events []audit.Event) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tDECISION\tREASON\tSUBJECT\tREQUEST")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.UTC().Format(time.RFC3339),
			e.Action, e.Decision, e.Reason, e.Subject, e.RequestID,
		)
	}
	return tw.Flush()
}
