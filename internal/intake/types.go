package intake

import (
	"context"
	"time"

	"deadline-buddy/internal/model"
)

// Step is the current position in the intake sequence.
type Step int

const (
	StepTitle Step = iota
	StepDescription
	StepDeadline
	StepPriority
	StepDone
)

// Draft is the record under construction. It never leaves the owning
// session until every field is set; cancellation discards it.
type Draft struct {
	Title        string
	Description  string
	DeadlineText string
	DeadlineAt   time.Time
	Priority     model.Priority
}

// Session is one user's position in the intake sequence plus the
// accumulated draft.
type Session struct {
	Step  Step
	Draft Draft
}

// Effect is what the caller should render after a transition. Done is set
// exactly once, when the draft is complete; the manager then finalizes it.
type Effect struct {
	Reply string
	Done  bool
}

// RecordSink persists a completed draft. Implemented by the record use
// case; kept narrow so the state machine tests need no storage.
type RecordSink interface {
	Save(ctx context.Context, sc model.Scope, draft Draft) (model.Record, error)
}
