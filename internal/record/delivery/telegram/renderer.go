package telegram

import (
	"context"
	"fmt"
	"sync"

	"deadline-buddy/internal/timer"
	pkgLog "deadline-buddy/pkg/log"
	pkgTelegram "deadline-buddy/pkg/telegram"
)

type timerTarget struct {
	chatID    int64
	messageID int64
}

// TimerRenderer draws countdown ticks into a single Telegram message per
// session, editing it in place so the chat does not fill up with ticks.
// Bindings are keyed by session ID so a stopped session's final render
// never touches a successor's message.
type TimerRenderer struct {
	l   pkgLog.Logger
	bot *pkgTelegram.Bot

	mu      sync.Mutex
	targets map[string]timerTarget
}

func NewTimerRenderer(l pkgLog.Logger, bot *pkgTelegram.Bot) *TimerRenderer {
	return &TimerRenderer{
		l:       l,
		bot:     bot,
		targets: make(map[string]timerTarget),
	}
}

// Bind points the session's countdown at a chat message. Ticks rendered
// before the binding exists are dropped; the placeholder message already
// shows the initial clock.
func (r *TimerRenderer) Bind(sessionID string, chatID, messageID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[sessionID] = timerTarget{chatID: chatID, messageID: messageID}
}

func (r *TimerRenderer) target(sessionID string) (timerTarget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.targets[sessionID]
	return t, ok
}

func (r *TimerRenderer) unbind(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.targets, sessionID)
}

func (r *TimerRenderer) RenderTick(ctx context.Context, s timer.Session, clock string) {
	t, ok := r.target(s.ID)
	if !ok {
		return
	}

	err := r.bot.EditMessageText(ctx, pkgTelegram.EditMessageTextRequest{
		ChatID:    t.chatID,
		MessageID: t.messageID,
		Text:      fmt.Sprintf("⏱ %s", clock),
		ReplyMarkup: &pkgTelegram.InlineKeyboardMarkup{
			InlineKeyboard: [][]pkgTelegram.InlineKeyboardButton{
				{{Text: "⏹ Stop", CallbackData: callbackStopTimer}},
			},
		},
	})
	if err != nil {
		r.l.Warnf(ctx, "timer renderer: tick edit failed for owner %d: %v", s.OwnerID, err)
	}
}

func (r *TimerRenderer) RenderCompleted(ctx context.Context, s timer.Session) {
	t, ok := r.target(s.ID)
	if !ok {
		return
	}
	r.unbind(s.ID)

	err := r.bot.EditMessageText(ctx, pkgTelegram.EditMessageTextRequest{
		ChatID:    t.chatID,
		MessageID: t.messageID,
		Text:      fmt.Sprintf("✅ Time's up! %d minutes of focus logged.", s.DurationSeconds/60),
	})
	if err != nil {
		r.l.Warnf(ctx, "timer renderer: completion edit failed for owner %d: %v", s.OwnerID, err)
	}
}

func (r *TimerRenderer) RenderStopped(ctx context.Context, s timer.Session) {
	t, ok := r.target(s.ID)
	if !ok {
		return
	}
	r.unbind(s.ID)

	err := r.bot.EditMessageText(ctx, pkgTelegram.EditMessageTextRequest{
		ChatID:    t.chatID,
		MessageID: t.messageID,
		Text:      "⏹ Timer stopped.",
	})
	if err != nil {
		r.l.Warnf(ctx, "timer renderer: stop edit failed for owner %d: %v", s.OwnerID, err)
	}
}
