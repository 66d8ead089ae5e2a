package usecase

import (
	"time"

	activityRepo "deadline-buddy/internal/activity/repository"
	recordRepo "deadline-buddy/internal/record/repository"
	pkgLog "deadline-buddy/pkg/log"
)

type implUseCase struct {
	l       pkgLog.Logger
	repo    activityRepo.ActivityRepository
	records recordRepo.RecordRepository
	clock   func() time.Time
}

// New creates a new activity UseCase instance. The record repository is
// needed because report counts come from the records table.
func New(
	l pkgLog.Logger,
	repo activityRepo.ActivityRepository,
	records recordRepo.RecordRepository,
) *implUseCase {
	return &implUseCase{
		l:       l,
		repo:    repo,
		records: records,
		clock:   time.Now,
	}
}
