package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"deadline-buddy/internal/model"
	"deadline-buddy/internal/record"
	"deadline-buddy/internal/record/repository/sqlite"
	"deadline-buddy/internal/storage"
)

func newTestRepo(t *testing.T) (repoAPI, func()) {
	t.Helper()
	store, err := storage.NewMemory()
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	return sqlite.New(store.DB()), func() { store.Close() }
}

// repoAPI mirrors repository.RecordRepository for test readability.
type repoAPI interface {
	Create(ctx context.Context, rec model.Record) (model.Record, error)
	ListActive(ctx context.Context, userID int64) ([]model.Record, error)
	MarkDeleted(ctx context.Context, userID, id int64) error
	CountCreatedSince(ctx context.Context, userID int64, since time.Time) (int, error)
}

func sampleRecord(userID int64, title string) model.Record {
	return model.Record{
		UserID:       userID,
		Title:        title,
		Description:  "desc",
		DeadlineText: "15.04.2024 23:59",
		Priority:     model.PriorityHigh,
		Status:       model.RecordStatusActive,
		CreatedAt:    time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC),
	}
}

func TestCreateAndList(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleRecord(1, "write report"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned ID")
	}

	if _, err := repo.Create(ctx, sampleRecord(2, "other user")); err != nil {
		t.Fatalf("create: %v", err)
	}

	records, err := repo.ListActive(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record for user 1, got %d", len(records))
	}
	got := records[0]
	if got.Title != "write report" || got.DeadlineText != "15.04.2024 23:59" ||
		got.Priority != model.PriorityHigh || got.Status != model.RecordStatusActive {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestMarkDeleted(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleRecord(1, "to delete"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.MarkDeleted(ctx, 1, created.ID); err != nil {
		t.Fatalf("mark deleted: %v", err)
	}

	records, err := repo.ListActive(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected soft-deleted record hidden from list, got %d", len(records))
	}

	// Soft delete keeps the row: all-time count still includes it.
	count, err := repo.CountCreatedSince(ctx, 1, time.Time{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count 1 after soft delete, got %d", count)
	}
}

func TestMarkDeletedWrongOwner(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleRecord(1, "mine"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = repo.MarkDeleted(ctx, 2, created.ID)
	if !errors.Is(err, record.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign record, got: %v", err)
	}
}

func TestListCorruptTimestampFails(t *testing.T) {
	store, err := storage.NewMemory()
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	defer store.Close()

	_, err = store.DB().Exec(
		`INSERT INTO records (user_id, title, description, deadline, priority, status, created_at, deleted)
		 VALUES (1, 'task', '', '01.01.2030 23:59', 2, 'active', 'not-a-timestamp', 0)`,
	)
	if err != nil {
		t.Fatalf("seed row: %v", err)
	}

	repo := sqlite.New(store.DB())
	if _, err := repo.ListActive(context.Background(), 1); err == nil {
		t.Fatalf("expected error for corrupt created_at")
	}
}

func TestCountCreatedSince(t *testing.T) {
	repo, cleanup := newTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	old := sampleRecord(1, "old")
	old.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := repo.Create(ctx, old); err != nil {
		t.Fatalf("create: %v", err)
	}
	recent := sampleRecord(1, "recent")
	recent.CreatedAt = time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC)
	if _, err := repo.Create(ctx, recent); err != nil {
		t.Fatalf("create: %v", err)
	}

	count, err := repo.CountCreatedSince(ctx, 1, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 recent record, got %d", count)
	}

	total, err := repo.CountCreatedSince(ctx, 1, time.Time{})
	if err != nil {
		t.Fatalf("count all: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 total records, got %d", total)
	}
}
