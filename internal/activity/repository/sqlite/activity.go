// Package sqlite implements the activity repository on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"deadline-buddy/internal/model"
)

type repo struct {
	db *sql.DB
}

// New creates a SQLite-backed activity repository.
func New(db *sql.DB) *repo {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, entry model.ActivityEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_activity (user_id, kind, duration_seconds, created_at)
		 VALUES (?, ?, ?, ?)`,
		entry.UserID, entry.Kind, entry.DurationSeconds,
		entry.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert activity entry: %w", err)
	}
	return nil
}

func (r *repo) FocusSeconds(ctx context.Context, userID int64) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(duration_seconds) FROM user_activity WHERE user_id = ? AND kind = ?`,
		userID, model.ActivityKindFocusTimer,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum focus seconds: %w", err)
	}
	return total.Int64, nil
}
