package usecase

import (
	"context"
	"fmt"
	"time"

	"deadline-buddy/internal/activity"
	"deadline-buddy/internal/model"
)

// LogFocus records a completed focus timer for the user.
func (uc *implUseCase) LogFocus(ctx context.Context, userID int64, duration time.Duration, at time.Time) error {
	entry := model.ActivityEntry{
		UserID:          userID,
		Kind:            model.ActivityKindFocusTimer,
		DurationSeconds: int64(duration / time.Second),
		CreatedAt:       at,
	}
	if err := uc.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to log focus timer: %w", err)
	}
	uc.l.Infof(ctx, "focus timer logged: user=%d seconds=%d", userID, entry.DurationSeconds)
	return nil
}

// Report aggregates records created in the last week / month / all time and
// total focus minutes.
func (uc *implUseCase) Report(ctx context.Context, sc model.Scope) (activity.Report, error) {
	now := uc.clock()

	week, err := uc.records.CountCreatedSince(ctx, sc.UserID, now.AddDate(0, 0, -7))
	if err != nil {
		return activity.Report{}, fmt.Errorf("failed to count weekly records: %w", err)
	}
	month, err := uc.records.CountCreatedSince(ctx, sc.UserID, now.AddDate(0, 0, -30))
	if err != nil {
		return activity.Report{}, fmt.Errorf("failed to count monthly records: %w", err)
	}
	total, err := uc.records.CountCreatedSince(ctx, sc.UserID, time.Time{})
	if err != nil {
		return activity.Report{}, fmt.Errorf("failed to count records: %w", err)
	}
	focusSeconds, err := uc.repo.FocusSeconds(ctx, sc.UserID)
	if err != nil {
		return activity.Report{}, fmt.Errorf("failed to sum focus time: %w", err)
	}

	return activity.Report{
		RecordsWeek:  week,
		RecordsMonth: month,
		RecordsTotal: total,
		FocusMinutes: focusSeconds / 60,
	}, nil
}
