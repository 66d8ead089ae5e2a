package telegram

import (
	"context"

	"deadline-buddy/internal/intake"
	"deadline-buddy/internal/model"
	"deadline-buddy/internal/record"
)

// recordSink adapts the record use case to the intake sink interface.
type recordSink struct {
	uc record.UseCase
}

// NewRecordSink wraps the record use case as a sink for completed intake
// drafts.
func NewRecordSink(uc record.UseCase) intake.RecordSink {
	return recordSink{uc: uc}
}

func (s recordSink) Save(ctx context.Context, sc model.Scope, draft intake.Draft) (model.Record, error) {
	return s.uc.Create(ctx, sc, record.CreateInput{
		Title:        draft.Title,
		Description:  draft.Description,
		DeadlineText: draft.DeadlineText,
		DeadlineAt:   draft.DeadlineAt,
		Priority:     draft.Priority,
	})
}
