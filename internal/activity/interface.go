package activity

import (
	"context"
	"time"

	"deadline-buddy/internal/model"
)

// UseCase defines the business logic interface for user activity.
type UseCase interface {
	// LogFocus records a completed focus timer for the user.
	LogFocus(ctx context.Context, userID int64, duration time.Duration, at time.Time) error

	// Report aggregates the user's activity: records created in the last
	// week / month / all time and total focus minutes.
	Report(ctx context.Context, sc model.Scope) (Report, error)
}
