package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"deadline-buddy/internal/activity"
	"deadline-buddy/internal/intake"
	"deadline-buddy/internal/model"
	"deadline-buddy/internal/record"
	"deadline-buddy/internal/timer"
	pkgLog "deadline-buddy/pkg/log"
	pkgResponse "deadline-buddy/pkg/response"
	pkgTelegram "deadline-buddy/pkg/telegram"
)

type handler struct {
	l          pkgLog.Logger
	recordUC   record.UseCase
	activityUC activity.UseCase
	intake     *intake.Manager
	timers     *timer.Manager
	renderer   *TimerRenderer
	bot        *pkgTelegram.Bot
	security   *SecurityValidator
}

// HandleWebhook is the Gin handler for incoming Telegram webhook updates.
// It responds with HTTP 200 immediately and processes the update in a
// background goroutine; Telegram retries deliveries that are not
// acknowledged within a few seconds.
func (h *handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.security.ValidateSecretToken(c.GetHeader("X-Telegram-Bot-Api-Secret-Token")); err != nil {
		h.l.Errorf(ctx, "telegram handler: secret token verification failed: %v", err)
		pkgResponse.Unauthorized(c)
		return
	}

	var update pkgTelegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to parse update: %v", err)
		pkgResponse.Error(c, err)
		return
	}

	if h.security.SeenUpdate(update.UpdateID) {
		pkgResponse.OK(c, map[string]string{"status": "duplicate"})
		return
	}

	sender := senderOf(update)
	if sender == nil {
		pkgResponse.OK(c, map[string]string{"status": "ignored"})
		return
	}

	if err := h.security.CheckRateLimit(sender.ID); err != nil {
		h.l.Warnf(ctx, "telegram handler: rate limit exceeded: %v", err)
		pkgResponse.TooManyRequests(c)
		return
	}

	// Process in goroutine, detached from the request context which is
	// cancelled once the response is written.
	go func() {
		bgCtx := context.Background()
		if err := h.processUpdate(bgCtx, update); err != nil {
			h.l.Errorf(bgCtx, "telegram handler: background processUpdate failed: %v", err)
			if chatID, ok := chatOf(update); ok {
				_ = h.bot.SendMessage(bgCtx, chatID, messageProcessingError)
			}
		}
	}()

	pkgResponse.OK(c, map[string]string{"status": "accepted"})
}

func senderOf(update pkgTelegram.Update) *pkgTelegram.User {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From
	}
	return nil
}

func chatOf(update pkgTelegram.Update) (int64, bool) {
	if update.Message != nil && update.Message.Chat != nil {
		return update.Message.Chat.ID, true
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil {
		return update.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}

func (h *handler) processUpdate(ctx context.Context, update pkgTelegram.Update) error {
	if update.CallbackQuery != nil {
		return h.processCallback(ctx, update.CallbackQuery)
	}
	if update.Message != nil {
		return h.processMessage(ctx, update.Message)
	}
	return nil
}

// processMessage handles a single Telegram text message.
func (h *handler) processMessage(ctx context.Context, msg *pkgTelegram.Message) error {
	if msg.Text == "" || msg.From == nil || msg.Chat == nil {
		return nil
	}

	sc := model.Scope{
		UserID:   msg.From.ID,
		Username: msg.From.Username,
	}
	chatID := msg.Chat.ID

	switch msg.Text {
	case "/start":
		return h.sendMainMenu(ctx, chatID, messageGreeting)

	case "/cancel":
		if h.intake.Cancel(ctx, sc) {
			return h.bot.SendMessage(ctx, chatID, intake.ReplyCancelled)
		}
		return h.bot.SendMessage(ctx, chatID, intake.ReplyNothingActive)

	case ButtonAddTask:
		// Fold the menu away while the intake dialog runs.
		effect := h.intake.Begin(ctx, sc)
		_, err := h.bot.Send(ctx, pkgTelegram.SendMessageRequest{
			ChatID:      chatID,
			Text:        effect.Reply,
			ReplyMarkup: &pkgTelegram.ReplyKeyboardRemove{RemoveKeyboard: true},
		})
		return err

	case ButtonTaskList:
		return h.sendRecordList(ctx, sc, chatID)

	case ButtonDelete:
		return h.sendDeletePicker(ctx, sc, chatID)

	case ButtonPomodoro:
		return h.sendPomodoroPicker(ctx, chatID)

	case ButtonActivity:
		return h.sendActivityReport(ctx, sc, chatID)
	}

	// Any other text feeds the intake sequence when one is active.
	if h.intake.Active(sc.UserID) {
		effect, err := h.intake.Advance(ctx, sc, msg.Text)
		if err != nil {
			return err
		}
		return h.bot.SendMessage(ctx, chatID, effect.Reply)
	}

	return h.bot.SendMessage(ctx, chatID, messageHint)
}

func (h *handler) sendMainMenu(ctx context.Context, chatID int64, text string) error {
	_, err := h.bot.Send(ctx, pkgTelegram.SendMessageRequest{
		ChatID: chatID,
		Text:   text,
		ReplyMarkup: &pkgTelegram.ReplyKeyboardMarkup{
			Keyboard: [][]pkgTelegram.KeyboardButton{
				{{Text: ButtonAddTask}, {Text: ButtonTaskList}},
				{{Text: ButtonDelete}, {Text: ButtonPomodoro}},
				{{Text: ButtonActivity}},
			},
			ResizeKeyboard: true,
		},
	})
	return err
}

func (h *handler) sendRecordList(ctx context.Context, sc model.Scope, chatID int64) error {
	records, err := h.recordUC.List(ctx, sc)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	if len(records) == 0 {
		return h.bot.SendMessage(ctx, chatID, messageNoRecords)
	}

	var b strings.Builder
	b.WriteString("📋 *Your tasks:*\n\n")
	for i, r := range records {
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, r.Title)
		if r.Description != "" {
			fmt.Fprintf(&b, "   %s\n", r.Description)
		}
		fmt.Fprintf(&b, "   ⏰ %s  •  %s\n\n", r.DeadlineText, r.Priority.Label())
	}
	return h.bot.SendMessageWithMode(ctx, chatID, b.String(), "Markdown")
}

func (h *handler) sendDeletePicker(ctx context.Context, sc model.Scope, chatID int64) error {
	records, err := h.recordUC.List(ctx, sc)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	if len(records) == 0 {
		return h.bot.SendMessage(ctx, chatID, messageNoRecords)
	}

	rows := make([][]pkgTelegram.InlineKeyboardButton, 0, len(records))
	for _, r := range records {
		rows = append(rows, []pkgTelegram.InlineKeyboardButton{{
			Text:         fmt.Sprintf("%s (%s)", r.Title, r.DeadlineText),
			CallbackData: fmt.Sprintf("%s%d", callbackDeletePrefix, r.ID),
		}})
	}

	_, err = h.bot.Send(ctx, pkgTelegram.SendMessageRequest{
		ChatID:      chatID,
		Text:        messageDeletePick,
		ReplyMarkup: &pkgTelegram.InlineKeyboardMarkup{InlineKeyboard: rows},
	})
	return err
}

func (h *handler) sendPomodoroPicker(ctx context.Context, chatID int64) error {
	_, err := h.bot.Send(ctx, pkgTelegram.SendMessageRequest{
		ChatID: chatID,
		Text:   messagePomodoroPick,
		ReplyMarkup: &pkgTelegram.InlineKeyboardMarkup{
			InlineKeyboard: [][]pkgTelegram.InlineKeyboardButton{
				{{Text: "🍅 Focus 25 min", CallbackData: callbackWork25}},
				{{Text: "☕ Break 5 min", CallbackData: callbackRest5}},
				{{Text: "🛋 Break 15 min", CallbackData: callbackRest15}},
			},
		},
	})
	return err
}

func (h *handler) sendActivityReport(ctx context.Context, sc model.Scope, chatID int64) error {
	report, err := h.activityUC.Report(ctx, sc)
	if err != nil {
		return fmt.Errorf("activity report: %w", err)
	}
	if report.Empty() {
		return h.bot.SendMessage(ctx, chatID, messageActivityEmpty)
	}

	text := fmt.Sprintf(
		"📊 *Your activity:*\n\nTasks created:\n• last 7 days: %d\n• last 30 days: %d\n• all time: %d\n\nFocused time: %d min",
		report.RecordsWeek, report.RecordsMonth, report.RecordsTotal, report.FocusMinutes,
	)
	return h.bot.SendMessageWithMode(ctx, chatID, text, "Markdown")
}

// processCallback handles inline keyboard presses.
func (h *handler) processCallback(ctx context.Context, cb *pkgTelegram.CallbackQuery) error {
	// Acknowledge first so the client stops its loading spinner.
	if err := h.bot.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		h.l.Warnf(ctx, "telegram handler: answerCallbackQuery failed: %v", err)
	}

	if cb.Message == nil || cb.Message.Chat == nil || cb.From == nil {
		return nil
	}
	sc := model.Scope{
		UserID:   cb.From.ID,
		Username: cb.From.Username,
	}
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(cb.Data, callbackDeletePrefix):
		return h.deleteRecord(ctx, sc, chatID, strings.TrimPrefix(cb.Data, callbackDeletePrefix))

	case cb.Data == callbackWork25:
		return h.startTimer(ctx, sc, chatID, 25*60)
	case cb.Data == callbackRest5:
		return h.startTimer(ctx, sc, chatID, 5*60)
	case cb.Data == callbackRest15:
		return h.startTimer(ctx, sc, chatID, 15*60)

	case cb.Data == callbackStopTimer:
		if err := h.timers.Stop(ctx, sc.UserID); err != nil {
			if errors.Is(err, timer.ErrNoneRunning) {
				return h.bot.SendMessage(ctx, chatID, messageNoTimer)
			}
			return err
		}
		return nil
	}

	h.l.Infof(ctx, "telegram handler: unknown callback data %q", cb.Data)
	return nil
}

func (h *handler) deleteRecord(ctx context.Context, sc model.Scope, chatID int64, rawID string) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return h.bot.SendMessage(ctx, chatID, messageDeleteFailed)
	}

	if err := h.recordUC.Delete(ctx, sc, id); err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return h.bot.SendMessage(ctx, chatID, messageDeleteFailed)
		}
		return fmt.Errorf("delete record: %w", err)
	}
	return h.bot.SendMessage(ctx, chatID, messageDeleted)
}

// startTimer sends the countdown placeholder, begins the session and binds
// the renderer to the placeholder message.
func (h *handler) startTimer(ctx context.Context, sc model.Scope, chatID int64, durationSeconds int) error {
	if h.timers.Active(sc.UserID) {
		return h.bot.SendMessage(ctx, chatID, messageTimerRunning)
	}

	placeholder, err := h.bot.Send(ctx, pkgTelegram.SendMessageRequest{
		ChatID: chatID,
		Text:   fmt.Sprintf("⏱ %02d:%02d", durationSeconds/60, durationSeconds%60),
		ReplyMarkup: &pkgTelegram.InlineKeyboardMarkup{
			InlineKeyboard: [][]pkgTelegram.InlineKeyboardButton{
				{{Text: "⏹ Stop", CallbackData: callbackStopTimer}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send timer placeholder: %w", err)
	}

	session, err := h.timers.Start(ctx, sc.UserID, durationSeconds)
	if err != nil {
		if errors.Is(err, timer.ErrAlreadyRunning) {
			return h.bot.SendMessage(ctx, chatID, messageTimerRunning)
		}
		return fmt.Errorf("start timer: %w", err)
	}

	h.renderer.Bind(session.ID, chatID, placeholder.MessageID)
	return nil
}
