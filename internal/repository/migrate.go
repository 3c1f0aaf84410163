package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            SERIAL PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id            SERIAL PRIMARY KEY,
		owner_id      INT NOT NULL REFERENCES users(id),
		title         TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		collaborators INT[] NOT NULL DEFAULT '{}',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id            SERIAL PRIMARY KEY,
		owner_id      INT NOT NULL REFERENCES users(id),
		project_id    INT REFERENCES projects(id) ON DELETE SET NULL,
		title         TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		due_date      TIMESTAMP,
		status        TEXT NOT NULL DEFAULT 'to-do',
		collaborators INT[] NOT NULL DEFAULT '{}',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_owner_due ON tasks (owner_id, due_date)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks (project_id)`,
	`CREATE TABLE IF NOT EXISTS reset_tokens (
		id         SERIAL PRIMARY KEY,
		user_id    INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		code       TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reset_tokens_user ON reset_tokens (user_id)`,
}

// Migrate applies the schema. Statements are idempotent so this is safe to
// run on every startup.
func Migrate(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			logger.Error("Migration statement failed", zap.Error(err))
			return err
		}
	}
	logger.Info("Database schema up to date")
	return nil
}
