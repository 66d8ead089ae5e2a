package intake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"deadline-buddy/internal/model"
	pkgLog "deadline-buddy/pkg/log"
)

// Manager owns the per-user intake sessions. Exactly one session exists per
// user while a sequence is in progress; all slot access is serialized by
// the mutex so concurrent messages cannot spawn a second draft.
type Manager struct {
	l       pkgLog.Logger
	machine *Machine
	sink    RecordSink
	clock   func() time.Time

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewManager creates the intake session manager.
func NewManager(l pkgLog.Logger, machine *Machine, sink RecordSink) *Manager {
	return &Manager{
		l:        l,
		machine:  machine,
		sink:     sink,
		clock:    time.Now,
		sessions: make(map[int64]*Session),
	}
}

// Begin starts a new intake sequence for the user, or re-prompts the
// current step when one is already in progress. An accidental second entry
// never discards typed fields.
func (mgr *Manager) Begin(ctx context.Context, sc model.Scope) Effect {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if s, ok := mgr.sessions[sc.UserID]; ok {
		mgr.l.Debugf(ctx, "intake re-entry for user %d at step %d, re-prompting", sc.UserID, s.Step)
		return Effect{Reply: Prompt(s.Step)}
	}

	mgr.sessions[sc.UserID] = &Session{Step: StepTitle}
	return Effect{Reply: PromptTitle}
}

// Active reports whether the user has an intake sequence in progress.
func (mgr *Manager) Active(userID int64) bool {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	_, ok := mgr.sessions[userID]
	return ok
}

// Advance applies one user message to the user's session. On completion the
// draft is handed to the RecordSink and the session is discarded; a sink
// failure keeps the session gone (the draft was already complete) and
// propagates so the caller can report it.
func (mgr *Manager) Advance(ctx context.Context, sc model.Scope, input string) (Effect, error) {
	mgr.mu.Lock()
	s, ok := mgr.sessions[sc.UserID]
	if !ok {
		mgr.mu.Unlock()
		return Effect{}, fmt.Errorf("no intake session for user %d", sc.UserID)
	}

	next, effect := mgr.machine.Advance(*s, input, mgr.clock())
	if !effect.Done {
		*s = next
		mgr.mu.Unlock()
		return effect, nil
	}

	// Draft complete: drop the session before persisting so the slot is
	// free regardless of the sink outcome.
	delete(mgr.sessions, sc.UserID)
	mgr.mu.Unlock()

	if _, err := mgr.sink.Save(ctx, sc, next.Draft); err != nil {
		return Effect{}, fmt.Errorf("failed to save finished record: %w", err)
	}

	mgr.l.Infof(ctx, "intake complete: user=%d title=%q", sc.UserID, next.Draft.Title)
	return effect, nil
}

// Cancel aborts the user's intake sequence, discarding the draft. Returns
// false when nothing was in progress.
func (mgr *Manager) Cancel(ctx context.Context, sc model.Scope) bool {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if _, ok := mgr.sessions[sc.UserID]; !ok {
		return false
	}
	delete(mgr.sessions, sc.UserID)
	mgr.l.Infof(ctx, "intake cancelled: user=%d", sc.UserID)
	return true
}
