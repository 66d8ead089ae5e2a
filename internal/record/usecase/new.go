package usecase

import (
	"time"

	"deadline-buddy/internal/record/repository"
	"deadline-buddy/pkg/gcalendar"
	pkgLog "deadline-buddy/pkg/log"
)

type implUseCase struct {
	l          pkgLog.Logger
	repo       repository.RecordRepository
	calendar   *gcalendar.Client // optional, nil when not configured
	timezone   string
	calendarID string
	clock      func() time.Time
}

// New creates a new record UseCase instance. calendar may be nil; record
// creation then skips the calendar mirror. An empty calendarID targets the
// account's primary calendar.
func New(
	l pkgLog.Logger,
	repo repository.RecordRepository,
	calendar *gcalendar.Client,
	timezone string,
	calendarID string,
) *implUseCase {
	return &implUseCase{
		l:          l,
		repo:       repo,
		calendar:   calendar,
		timezone:   timezone,
		calendarID: calendarID,
		clock:      time.Now,
	}
}
