package record

import (
	"context"

	"deadline-buddy/internal/model"
)

// UseCase defines the business logic interface for the record domain.
type UseCase interface {
	// Create persists a finished record and optionally mirrors it to the
	// configured calendar.
	Create(ctx context.Context, sc model.Scope, input CreateInput) (model.Record, error)

	// List returns the caller's active, non-deleted records.
	List(ctx context.Context, sc model.Scope) ([]model.Record, error)

	// Delete soft-deletes a record owned by the caller.
	Delete(ctx context.Context, sc model.Scope, id int64) error
}
