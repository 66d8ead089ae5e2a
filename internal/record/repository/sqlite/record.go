// Package sqlite implements the record repository on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"deadline-buddy/internal/model"
	"deadline-buddy/internal/record"
)

type repo struct {
	db *sql.DB
}

// New creates a SQLite-backed record repository.
func New(db *sql.DB) *repo {
	return &repo{db: db}
}

// Create inserts the record and returns it with the assigned ID.
func (r *repo) Create(ctx context.Context, rec model.Record) (model.Record, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO records (user_id, title, description, deadline, priority, status, created_at, deleted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		rec.UserID, rec.Title, rec.Description, rec.DeadlineText, int(rec.Priority),
		string(rec.Status), rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return model.Record{}, fmt.Errorf("insert record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Record{}, fmt.Errorf("read inserted record id: %w", err)
	}
	rec.ID = id
	return rec, nil
}

// ListActive returns the user's active, non-deleted records ordered by
// creation time.
func (r *repo) ListActive(ctx context.Context, userID int64) ([]model.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, deadline, priority, status, created_at, deleted
		 FROM records
		 WHERE user_id = ? AND status = ? AND deleted = 0
		 ORDER BY id`,
		userID, string(model.RecordStatusActive),
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MarkDeleted flips the deleted flag on the user's record. Rows are never
// removed.
func (r *repo) MarkDeleted(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET deleted = 1 WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("mark record deleted: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		return record.ErrNotFound
	}
	return nil
}

// CountCreatedSince counts records created at or after since; a zero since
// counts all of the user's records, deleted ones included.
func (r *repo) CountCreatedSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	var err error
	if since.IsZero() {
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM records WHERE user_id = ?`, userID,
		).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM records WHERE user_id = ? AND created_at >= ?`,
			userID, since.UTC().Format(time.RFC3339),
		).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (model.Record, error) {
	var rec model.Record
	var priority int
	var status, createdAt string
	var deleted int

	err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Description,
		&rec.DeadlineText, &priority, &status, &createdAt, &deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Record{}, record.ErrNotFound
		}
		return model.Record{}, fmt.Errorf("scan record: %w", err)
	}

	rec.Priority = model.Priority(priority)
	rec.Status = model.RecordStatus(status)
	rec.Deleted = deleted != 0
	rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return model.Record{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	return rec, nil
}
