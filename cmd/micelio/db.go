package main

import (
	"context"
	"fmt"
	"strings"

	"micelio/internal/config"
	"micelio/internal/store"
	"micelio/internal/store/postgres"
	"micelio/internal/store/sqlite"
)

// openDB picks the store implementation from the DSN scheme.
func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	dsn := strings.TrimSpace(cfg.Database.DSN)
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.New(ctx, dsn)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.New(ctx, dsn)
	case dsn == "":
		return nil, fmt.Errorf("database dsn is not configured")
	default:
		return nil, fmt.Errorf("unsupported database dsn scheme: %s", dsn)
	}
}
