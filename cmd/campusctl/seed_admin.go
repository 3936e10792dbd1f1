package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	userstore "campus/internal/auth/store/user"
	"campus/internal/seeder"
	"campus/pkg/platform/audit/publisher"
	auditpg "campus/pkg/platform/audit/store/postgres"
)

type seedAdminConfig struct {
	email     string
	password  string
	firstName string
	lastName  string
	timeout   time.Duration
}

// NewSeedAdminCmd creates the seed-admin subcommand.
func NewSeedAdminCmd() *cobra.Command {
	cfg := &seedAdminConfig{}

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the bootstrap administrator",
		Long: `Create an ACTIVE administrator that must change its password at first
login. Does nothing if the email is already registered.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeedAdmin(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", os.Getenv("SEED_ADMIN_EMAIL"), "admin email (defaults to $SEED_ADMIN_EMAIL)")
	cmd.Flags().StringVar(&cfg.password, "password", os.Getenv("SEED_ADMIN_PASSWORD"), "initial password; generated if empty")
	cmd.Flags().StringVar(&cfg.firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&cfg.lastName, "last-name", "", "last name")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultDBTimeout, "timeout for database operations")

	return cmd
}

func runSeedAdmin(cmd *cobra.Command, cfg *seedAdminConfig) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	pool, err := openMigrated(ctx)
	if err != nil {
		return err
	}
	defer pool.Close() //nolint:errcheck

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
	s := seeder.New(
		userstore.NewPostgres(pool.DB()),
		publisher.NewPublisher(auditpg.New(pool.DB())),
		logger,
	)
	res, err := s.SeedAdmin(ctx, seeder.Admin{
		Email:     cfg.email,
		Password:  cfg.password,
		FirstName: cfg.firstName,
		LastName:  cfg.lastName,
	})
	if err != nil {
		return err
	}

	if !res.Created {
		cmd.Println("Admin already exists, nothing to do")
		return nil
	}
	cmd.Printf("Admin created: %s\n", res.UserID)
	if res.GeneratedPassword != "" {
		cmd.Printf("Initial password: %s\n", res.GeneratedPassword)
	}
	return nil
}
