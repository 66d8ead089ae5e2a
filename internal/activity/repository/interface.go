package repository

import (
	"context"

	"deadline-buddy/internal/model"
)

// ActivityRepository is the interface for activity log persistence.
type ActivityRepository interface {
	Insert(ctx context.Context, entry model.ActivityEntry) error

	// FocusSeconds sums the duration of the user's focus timer entries.
	FocusSeconds(ctx context.Context, userID int64) (int64, error)
}
