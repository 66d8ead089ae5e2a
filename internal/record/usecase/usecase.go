package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deadline-buddy/internal/model"
	"deadline-buddy/internal/record"
	"deadline-buddy/pkg/gcalendar"
)

// Create persists a finished record and mirrors it to the configured
// calendar when one is available.
func (uc *implUseCase) Create(ctx context.Context, sc model.Scope, input record.CreateInput) (model.Record, error) {
	if strings.TrimSpace(input.Title) == "" {
		return model.Record{}, record.ErrEmptyTitle
	}
	if !input.Priority.Valid() {
		return model.Record{}, record.ErrInvalidPriority
	}

	rec := model.Record{
		UserID:       sc.UserID,
		Title:        input.Title,
		Description:  input.Description,
		DeadlineText: input.DeadlineText,
		DeadlineAt:   input.DeadlineAt,
		Priority:     input.Priority,
		Status:       model.RecordStatusActive,
		CreatedAt:    uc.clock(),
	}

	created, err := uc.repo.Create(ctx, rec)
	if err != nil {
		return model.Record{}, fmt.Errorf("failed to save record: %w", err)
	}

	uc.l.Infof(ctx, "record created: user=%d id=%d priority=%s deadline=%s",
		sc.UserID, created.ID, created.Priority.Label(), created.DeadlineText)

	uc.tryMirrorCalendarEvent(ctx, created)

	return created, nil
}

// List returns the caller's active, non-deleted records.
func (uc *implUseCase) List(ctx context.Context, sc model.Scope) ([]model.Record, error) {
	records, err := uc.repo.ListActive(ctx, sc.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

// Delete soft-deletes a record owned by the caller.
func (uc *implUseCase) Delete(ctx context.Context, sc model.Scope, id int64) error {
	if err := uc.repo.MarkDeleted(ctx, sc.UserID, id); err != nil {
		return err
	}
	uc.l.Infof(ctx, "record soft-deleted: user=%d id=%d", sc.UserID, id)
	return nil
}

// tryMirrorCalendarEvent creates a calendar event for the record's deadline.
// Failures are logged, never surfaced: the record is already saved.
func (uc *implUseCase) tryMirrorCalendarEvent(ctx context.Context, rec model.Record) {
	if uc.calendar == nil || rec.DeadlineAt.IsZero() {
		return
	}

	event, err := uc.calendar.CreateEvent(ctx, gcalendar.CreateEventRequest{
		CalendarID:  uc.calendarID,
		Summary:     rec.Title,
		Description: rec.Description,
		StartTime:   rec.DeadlineAt,
		EndTime:     rec.DeadlineAt.Add(time.Hour),
		Timezone:    uc.timezone,
	})
	if err != nil {
		uc.l.Warnf(ctx, "calendar mirror failed for record %d: %v", rec.ID, err)
		return
	}
	uc.l.Infof(ctx, "calendar event created for record %d: %s", rec.ID, event.HtmlLink)
}
