// Package migration creates the activity log schema on first start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_activities",
		SQL: `CREATE TABLE IF NOT EXISTS activities (
  id         UUID        PRIMARY KEY,
  kind       TEXT        NOT NULL,
  filename   TEXT        NOT NULL DEFAULT '',
  format     TEXT        NOT NULL DEFAULT '',
  size       BIGINT      NOT NULL CHECK (size >= 0),
  status     TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_activities_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_activities_created_at ON activities (created_at DESC, id DESC);`,
	},
	{
		Name: "create_index_activities_kind",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_activities_kind ON activities (kind);`,
	},
}

// EnsureMigrated checks if the 'activities' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	logger = logger.With(slog.String("component", "database"), slog.String("db_host", dbHost))

	logger.Info("db_migration_check", slog.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.activities') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		logger.Error("db_migration_failed",
			slog.String("status", "error"),
			slog.String("error_message", fmt.Sprintf("failed to check sentinel table: %v", err)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logger.Info("db_migration_skip",
			slog.String("status", "success"),
			slog.String("msg", "schema already exists, skipping migration"),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	logger.Info("db_migration_start", slog.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logger.Error("db_migration_failed",
				slog.String("status", "error"),
				slog.String("migration_step", step.Name),
				slog.String("error_message", err.Error()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logger.Info("db_migration_step",
			slog.String("status", "success"),
			slog.String("migration_step", step.Name),
			slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	logger.Info("db_migration_success",
		slog.String("status", "success"),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
