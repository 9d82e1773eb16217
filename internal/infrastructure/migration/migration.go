package migration

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

// Migrations lists the schema steps in the order they run. Every step is
// idempotent.
var Migrations = []Migration{
	{Name: "create_cvs", Up: exec(`
		CREATE TABLE IF NOT EXISTS cvs (
			user_id    TEXT PRIMARY KEY,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`)},
	{Name: "create_cv_exports", Up: exec(`
		CREATE TABLE IF NOT EXISTS cv_exports (
			id         UUID PRIMARY KEY,
			user_id    TEXT NOT NULL,
			template   TEXT NOT NULL,
			format     TEXT NOT NULL DEFAULT 'A4',
			file_name  TEXT NOT NULL,
			width_px   INTEGER NOT NULL,
			height_px  INTEGER NOT NULL,
			overflow   BOOLEAN NOT NULL DEFAULT false,
			size_bytes INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`)},
	{Name: "index_cv_exports_user", Up: exec(`
		CREATE INDEX IF NOT EXISTS cv_exports_user_created_idx
			ON cv_exports (user_id, created_at DESC);`)},
}

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	logger.Info("starting database migrations")

	for _, m := range Migrations {
		if err := m.Up(ctx, pool); err != nil {
			logger.Error("migration failed", zap.String("name", m.Name), zap.Error(err))
			return err
		}
		logger.Info("migration completed", zap.String("name", m.Name))
	}

	logger.Info("all migrations completed")
	return nil
}

func exec(query string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		_, err := pool.Exec(ctx, query)
		return err
	}
}
