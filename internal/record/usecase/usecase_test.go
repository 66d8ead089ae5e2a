package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"deadline-buddy/internal/model"
	"deadline-buddy/internal/record"
	"deadline-buddy/internal/record/usecase"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Debugf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) Info(ctx context.Context, args ...interface{})                   {}
func (m *mockLogger) Infof(ctx context.Context, format string, args ...interface{})   {}
func (m *mockLogger) Warn(ctx context.Context, args ...interface{})                   {}
func (m *mockLogger) Warnf(ctx context.Context, format string, args ...interface{})   {}
func (m *mockLogger) Error(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Errorf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) DPanic(ctx context.Context, args ...interface{})                 {}
func (m *mockLogger) DPanicf(ctx context.Context, format string, args ...interface{}) {}
func (m *mockLogger) Panic(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Panicf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) Fatal(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Fatalf(ctx context.Context, format string, args ...interface{})  {}

type mockRepo struct {
	created    []model.Record
	createErr  error
	listResult []model.Record
	deleteErr  error
}

func (m *mockRepo) Create(ctx context.Context, rec model.Record) (model.Record, error) {
	if m.createErr != nil {
		return model.Record{}, m.createErr
	}
	rec.ID = int64(len(m.created) + 1)
	m.created = append(m.created, rec)
	return rec, nil
}

func (m *mockRepo) ListActive(ctx context.Context, userID int64) ([]model.Record, error) {
	return m.listResult, nil
}

func (m *mockRepo) MarkDeleted(ctx context.Context, userID, id int64) error {
	return m.deleteErr
}

func (m *mockRepo) CountCreatedSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	return len(m.created), nil
}

func validInput() record.CreateInput {
	return record.CreateInput{
		Title:        "write report",
		Description:  "quarterly numbers",
		DeadlineText: "15.04.2024 23:59",
		DeadlineAt:   time.Date(2024, 4, 15, 23, 59, 0, 0, time.UTC),
		Priority:     model.PriorityMedium,
	}
}

func TestCreate(t *testing.T) {
	repo := &mockRepo{}
	uc := usecase.New(&mockLogger{}, repo, nil, "UTC", "")
	sc := model.Scope{UserID: 42}

	created, err := uc.Create(context.Background(), sc, validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned ID")
	}
	if created.UserID != 42 {
		t.Fatalf("expected record bound to scope user, got %d", created.UserID)
	}
	if created.Status != model.RecordStatusActive {
		t.Fatalf("expected active status, got %q", created.Status)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestCreateValidation(t *testing.T) {
	uc := usecase.New(&mockLogger{}, &mockRepo{}, nil, "UTC", "")
	sc := model.Scope{UserID: 42}

	t.Run("empty title", func(t *testing.T) {
		input := validInput()
		input.Title = "   "
		_, err := uc.Create(context.Background(), sc, input)
		if !errors.Is(err, record.ErrEmptyTitle) {
			t.Fatalf("expected ErrEmptyTitle, got: %v", err)
		}
	})

	t.Run("invalid priority", func(t *testing.T) {
		input := validInput()
		input.Priority = 5
		_, err := uc.Create(context.Background(), sc, input)
		if !errors.Is(err, record.ErrInvalidPriority) {
			t.Fatalf("expected ErrInvalidPriority, got: %v", err)
		}
	})
}

func TestCreateStorageFailurePropagates(t *testing.T) {
	repo := &mockRepo{createErr: errors.New("database is locked")}
	uc := usecase.New(&mockLogger{}, repo, nil, "UTC", "")

	_, err := uc.Create(context.Background(), model.Scope{UserID: 1}, validInput())
	if err == nil {
		t.Fatalf("expected storage error to propagate")
	}
}
