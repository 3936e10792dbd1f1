package main

import (
	"context"
	"errors"

	"campus/internal/platform/database"
	"campus/migrations"
)

// openMigrated connects to databaseURL and brings the schema up to date.
func openMigrated(ctx context.Context) (*database.Pool, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is required: pass --database-url or set DATABASE_URL")
	}
	cfg := database.DefaultConfig()
	cfg.URL = databaseURL
	pool, err := database.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(ctx, pool.DB()); err != nil {
		pool.Close() //nolint:errcheck // best-effort cleanup on migrate failure
		return nil, err
	}
	return pool, nil
}
