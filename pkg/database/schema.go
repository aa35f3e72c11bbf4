package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied idempotently at startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS location_search_history (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		query TEXT NOT NULL,
		searched_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, query)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_location_search_history_user ON location_search_history (user_id, searched_at DESC)`,
	`CREATE TABLE IF NOT EXISTS export_jobs (
		id UUID PRIMARY KEY,
		params JSONB NOT NULL,
		status TEXT NOT NULL,
		progress INTEGER NOT NULL DEFAULT 0,
		result_url TEXT,
		created_by TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		error_message TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_export_jobs_status ON export_jobs (status)`,
}

// EnsureSchema creates the BFF tables when missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
