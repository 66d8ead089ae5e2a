package timer

import (
	"context"
	"time"
)

// Phase tracks where a focus session is in its lifecycle.
type Phase string

const (
	PhaseRunning   Phase = "running"
	PhaseCompleted Phase = "completed"
	PhaseCancelled Phase = "cancelled"
)

// Session is one countdown owned by a single user. At most one session
// per owner is running at any time.
type Session struct {
	ID               string
	OwnerID          int64
	DurationSeconds  int
	RemainingSeconds int
	Phase            Phase
	StartedAt        time.Time
}

// TickSink receives the user-visible renders of a running session.
// RenderTick is called once per remaining second, duration down to zero
// inclusive. Exactly one of RenderCompleted or RenderStopped follows.
type TickSink interface {
	RenderTick(ctx context.Context, s Session, clock string)
	RenderCompleted(ctx context.Context, s Session)
	RenderStopped(ctx context.Context, s Session)
}

// ActivityLog records a finished session's focused time. Satisfied by the
// activity use case.
type ActivityLog interface {
	LogFocus(ctx context.Context, userID int64, duration time.Duration, at time.Time) error
}
