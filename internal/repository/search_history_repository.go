package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

// SearchHistoryRepository stores each user's most recent location searches.
type SearchHistoryRepository struct {
	db *sqlx.DB
}

// NewSearchHistoryRepository constructs the repository.
func NewSearchHistoryRepository(db *sqlx.DB) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: db}
}

// ListByUser returns the newest entries first.
func (r *SearchHistoryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.SearchHistoryEntry, error) {
	const query = `SELECT id, user_id, query, searched_at FROM location_search_history
WHERE user_id = $1 ORDER BY searched_at DESC LIMIT $2`
	entries := make([]models.SearchHistoryEntry, 0, limit)
	if err := r.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list search history: %w", err)
	}
	return entries, nil
}

// Record moves query to the front of the user's history and evicts the
// least recently used entries beyond limit, in one transaction.
func (r *SearchHistoryRepository) Record(ctx context.Context, userID, query string, at time.Time, limit int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin search history tx: %w", err)
	}

	const upsert = `INSERT INTO location_search_history (id, user_id, query, searched_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, query) DO UPDATE SET searched_at = EXCLUDED.searched_at`
	if _, err := tx.ExecContext(ctx, upsert, uuid.NewString(), userID, query, at.UTC()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record search history: %w", err)
	}

	const trim = `DELETE FROM location_search_history WHERE user_id = $1 AND id NOT IN (
SELECT id FROM location_search_history WHERE user_id = $1 ORDER BY searched_at DESC LIMIT $2)`
	if _, err := tx.ExecContext(ctx, trim, userID, limit); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("trim search history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit search history tx: %w", err)
	}
	return nil
}

// ClearByUser removes every entry for the user.
func (r *SearchHistoryRepository) ClearByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM location_search_history WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear search history: %w", err)
	}
	return nil
}
