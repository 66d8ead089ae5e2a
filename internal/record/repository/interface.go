package repository

import (
	"context"
	"time"

	"deadline-buddy/internal/model"
)

// RecordRepository is the interface for record persistence.
type RecordRepository interface {
	Create(ctx context.Context, rec model.Record) (model.Record, error)
	ListActive(ctx context.Context, userID int64) ([]model.Record, error)
	MarkDeleted(ctx context.Context, userID, id int64) error

	// CountCreatedSince counts the user's records created at or after the
	// given time; a zero time counts everything. Used by activity reports.
	CountCreatedSince(ctx context.Context, userID int64, since time.Time) (int, error)
}
