package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgLog "deadline-buddy/pkg/log"
)

type running struct {
	session Session
	cancel  context.CancelFunc
}

// Manager enforces one running session per owner and drives the
// per-second countdown for each.
type Manager struct {
	l        pkgLog.Logger
	sink     TickSink
	log      ActivityLog
	interval time.Duration
	clock    func() time.Time

	mu       sync.Mutex
	sessions map[int64]*running
	wg       sync.WaitGroup
}

func New(l pkgLog.Logger, sink TickSink, log ActivityLog) *Manager {
	return NewWithInterval(l, sink, log, time.Second)
}

// NewWithInterval builds a manager ticking at the given interval
// instead of one second. Tests use a short interval.
func NewWithInterval(l pkgLog.Logger, sink TickSink, log ActivityLog, interval time.Duration) *Manager {
	return &Manager{
		l:        l,
		sink:     sink,
		log:      log,
		interval: interval,
		clock:    time.Now,
		sessions: make(map[int64]*running),
	}
}

// Start begins a countdown of durationSeconds for the owner. It fails
// with ErrAlreadyRunning while the owner has a live session.
func (m *Manager) Start(ctx context.Context, ownerID int64, durationSeconds int) (Session, error) {
	if durationSeconds <= 0 {
		return Session{}, ErrInvalidDuration
	}

	m.mu.Lock()
	if _, ok := m.sessions[ownerID]; ok {
		m.mu.Unlock()
		return Session{}, ErrAlreadyRunning
	}

	s := Session{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		DurationSeconds:  durationSeconds,
		RemainingSeconds: durationSeconds,
		Phase:            PhaseRunning,
		StartedAt:        m.clock(),
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.sessions[ownerID] = &running{session: s, cancel: cancel}
	m.mu.Unlock()

	m.l.Infof(ctx, "timer.Start: owner %d, %ds session %s", ownerID, durationSeconds, s.ID)

	m.wg.Add(1)
	go m.run(runCtx, s)

	return s, nil
}

// Stop cancels the owner's running session. The slot frees immediately,
// so a new Start may follow without waiting for the stopped render.
func (m *Manager) Stop(ctx context.Context, ownerID int64) error {
	m.mu.Lock()
	r, ok := m.sessions[ownerID]
	if !ok {
		m.mu.Unlock()
		return ErrNoneRunning
	}
	delete(m.sessions, ownerID)
	m.mu.Unlock()

	r.cancel()
	m.l.Infof(ctx, "timer.Stop: owner %d, session %s", ownerID, r.session.ID)
	return nil
}

// Active reports whether the owner has a running session.
func (m *Manager) Active(ownerID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[ownerID]
	return ok
}

// Wait blocks until all countdown goroutines have finished. Tests and
// shutdown use it.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context, s Session) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for remaining := s.DurationSeconds; remaining >= 0; remaining-- {
		s.RemainingSeconds = remaining
		m.sink.RenderTick(ctx, s, formatClock(remaining))
		select {
		case <-ctx.Done():
			s.Phase = PhaseCancelled
			m.sink.RenderStopped(context.WithoutCancel(ctx), s)
			return
		case <-ticker.C:
		}
	}

	s.Phase = PhaseCompleted
	m.finish(s)
	m.sink.RenderCompleted(ctx, s)

	if err := m.log.LogFocus(ctx, s.OwnerID, time.Duration(s.DurationSeconds)*time.Second, m.clock()); err != nil {
		m.l.Errorf(ctx, "timer.run.LogFocus: %v", err)
	}
}

// finish clears the slot only if it still belongs to this session. A
// Stop followed by a fresh Start must not lose the new session.
func (m *Manager) finish(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.sessions[s.OwnerID]; ok && r.session.ID == s.ID {
		delete(m.sessions, s.OwnerID)
	}
}

func formatClock(remaining int) string {
	return fmt.Sprintf("%02d:%02d", remaining/60, remaining%60)
}
