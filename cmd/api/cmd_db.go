package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/georgemunganga/olambola-backend/internal/platform/config"
	"github.com/georgemunganga/olambola-backend/internal/platform/logger"
	"github.com/georgemunganga/olambola-backend/internal/platform/remote"
)

// olambola migrate: create tables, constraints and the change trigger.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.Setup(cfg.AppEnv, os.Stdout)

		db, err := remote.Open(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := remote.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		fmt.Println("✅  Schema applied")
		return nil
	},
}

// openRemote connects to the database. A missing DATABASE_URL is not an
// error: the service runs with empty catalogs and refuses writes.
func openRemote(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := remote.Open(ctx, cfg.DatabaseURL)
	if errors.Is(err, remote.ErrNotConfigured) {
		logger.Warn("DATABASE_URL is not set; catalog and admin directory are unavailable")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}
