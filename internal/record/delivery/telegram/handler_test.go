package telegram_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"deadline-buddy/internal/activity"
	"deadline-buddy/internal/intake"
	"deadline-buddy/internal/model"
	"deadline-buddy/internal/record"
	"deadline-buddy/internal/record/delivery/telegram"
	"deadline-buddy/internal/timer"
	"deadline-buddy/pkg/deadline"
	pkgTelegram "deadline-buddy/pkg/telegram"
)

const testSecret = "test-secret"

// ── Mocks ──────────────────────────────────────────────────────────────────

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

type mockRecordUC struct {
	mu      sync.Mutex
	created []record.CreateInput
	listOut []model.Record
	listErr error
	deleted []int64
	delErr  error
}

func (m *mockRecordUC) Create(ctx context.Context, sc model.Scope, input record.CreateInput) (model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, input)
	return model.Record{ID: int64(len(m.created)), UserID: sc.UserID, Title: input.Title}, nil
}

func (m *mockRecordUC) List(ctx context.Context, sc model.Scope) ([]model.Record, error) {
	return m.listOut, m.listErr
}

func (m *mockRecordUC) Delete(ctx context.Context, sc model.Scope, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockRecordUC) createdInputs() []record.CreateInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]record.CreateInput(nil), m.created...)
}

func (m *mockRecordUC) deletedIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.deleted...)
}

type mockActivityUC struct {
	report    activity.Report
	reportErr error
}

func (m *mockActivityUC) LogFocus(ctx context.Context, userID int64, duration time.Duration, at time.Time) error {
	return nil
}

func (m *mockActivityUC) Report(ctx context.Context, sc model.Scope) (activity.Report, error) {
	return m.report, m.reportErr
}

type capturedTraffic struct {
	mu       sync.Mutex
	messages []string
	modes    []string
	markups  []string
	edits    []string
}

func (c *capturedTraffic) addMessage(text, mode, markup string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, text)
	c.modes = append(c.modes, mode)
	c.markups = append(c.markups, markup)
}

func (c *capturedTraffic) modeOf(substr string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, m := range c.messages {
		if strings.Contains(m, substr) {
			return c.modes[i], true
		}
	}
	return "", false
}

func (c *capturedTraffic) markupOf(substr string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, m := range c.messages {
		if strings.Contains(m, substr) {
			return c.markups[i], true
		}
	}
	return "", false
}

func (c *capturedTraffic) addEdit(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edits = append(c.edits, text)
}

func (c *capturedTraffic) snapshotMessages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

func (c *capturedTraffic) snapshotEdits() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.edits...)
}

// ── Test Helpers ───────────────────────────────────────────────────────────

type testEnv struct {
	engine     *gin.Engine
	recordUC   *mockRecordUC
	activityUC *mockActivityUC
	timers     *timer.Manager
	traffic    *capturedTraffic
	updateID   int64
}

func newTestEnv(t *testing.T) (*testEnv, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	traffic := &capturedTraffic{}

	tgServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		text, _ := payload["text"].(string)
		mode, _ := payload["parse_mode"].(string)
		var markup string
		if raw, ok := payload["reply_markup"]; ok {
			b, _ := json.Marshal(raw)
			markup = string(b)
		}
		if strings.Contains(r.URL.Path, "/sendMessage") {
			traffic.addMessage(text, mode, markup)
		}
		if strings.Contains(r.URL.Path, "/editMessageText") {
			traffic.addEdit(text)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok": true, "result": {"message_id": 99, "chat": {"id": 123}}}`))
	}))

	l := &mockLogger{}
	bot := pkgTelegram.NewBot("test-token")
	bot.SetAPIURL(tgServer.URL)

	parser, err := deadline.NewParser("UTC")
	if err != nil {
		t.Fatalf("new parser: %v", err)
	}

	recordUC := &mockRecordUC{}
	activityUC := &mockActivityUC{}

	intakeMgr := intake.NewManager(l, intake.NewMachine(parser), telegram.NewRecordSink(recordUC))
	renderer := telegram.NewTimerRenderer(l, bot)
	// A long tick interval keeps sessions pinned at their first tick.
	timerMgr := timer.NewWithInterval(l, renderer, activityUC, time.Minute)

	security := telegram.NewSecurityValidator(telegram.SecurityConfig{
		SecretToken:     testSecret,
		RateLimitPerMin: 600,
	})

	engine := gin.New()
	h := telegram.New(l, recordUC, activityUC, intakeMgr, timerMgr, renderer, bot, security)
	engine.POST("/webhook/telegram", h.HandleWebhook)

	return &testEnv{
		engine:     engine,
		recordUC:   recordUC,
		activityUC: activityUC,
		timers:     timerMgr,
		traffic:    traffic,
	}, tgServer
}

func (env *testEnv) post(update pkgTelegram.Update) *httptest.ResponseRecorder {
	body, _ := json.Marshal(update)
	req, _ := http.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", testSecret)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func (env *testEnv) sendText(text string) *httptest.ResponseRecorder {
	env.updateID++
	return env.post(pkgTelegram.Update{
		UpdateID: env.updateID,
		Message: &pkgTelegram.Message{
			MessageID: env.updateID,
			Chat:      &pkgTelegram.Chat{ID: 123},
			From:      &pkgTelegram.User{ID: 456, Username: "tester"},
			Text:      text,
		},
	})
}

func (env *testEnv) sendCallback(data string) *httptest.ResponseRecorder {
	env.updateID++
	return env.post(pkgTelegram.Update{
		UpdateID: env.updateID,
		CallbackQuery: &pkgTelegram.CallbackQuery{
			ID:   "cb-1",
			From: &pkgTelegram.User{ID: 456, Username: "tester"},
			Message: &pkgTelegram.Message{
				MessageID: env.updateID,
				Chat:      &pkgTelegram.Chat{ID: 123},
			},
			Data: data,
		},
	})
}

func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func assertContains(t *testing.T, msgs []string, substr string) {
	t.Helper()
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return
		}
	}
	t.Errorf("expected a message containing %q, got: %v", substr, msgs)
}

// ── Tests ──────────────────────────────────────────────────────────────────

func TestHandleWebhook_MissingSecret(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	update := pkgTelegram.Update{UpdateID: 1}
	body, _ := json.Marshal(update)
	req, _ := http.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestHandleWebhook_InvalidJSON(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	req, _ := http.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBufferString("{bad json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", testSecret)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleWebhook_EmptyUpdate(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	w := env.post(pkgTelegram.Update{UpdateID: 1})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestHandleWebhook_MessageWithoutChat(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	// Channel posts and other edge updates may carry a message with no
	// chat object. They must be ignored, not crash the worker goroutine.
	w := env.post(pkgTelegram.Update{
		UpdateID: 1,
		Message: &pkgTelegram.Message{
			MessageID: 5,
			From:      &pkgTelegram.User{ID: 7},
			Text:      "/start",
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = env.post(pkgTelegram.Update{
		UpdateID: 2,
		CallbackQuery: &pkgTelegram.CallbackQuery{
			ID:      "cb-1",
			From:    &pkgTelegram.User{ID: 7},
			Message: &pkgTelegram.Message{MessageID: 5},
			Data:    "work_25",
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	time.Sleep(100 * time.Millisecond)
	if got := len(env.traffic.snapshotMessages()); got != 0 {
		t.Errorf("chatless updates must produce no replies, got %d", got)
	}
}

func TestHandleWebhook_DuplicateUpdateIgnored(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	update := pkgTelegram.Update{
		UpdateID: 42,
		Message: &pkgTelegram.Message{
			MessageID: 1,
			Chat:      &pkgTelegram.Chat{ID: 123},
			From:      &pkgTelegram.User{ID: 456},
			Text:      "/start",
		},
	}
	env.post(update)
	env.post(update)

	waitFor(time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= 1 })
	time.Sleep(100 * time.Millisecond)
	if got := len(env.traffic.snapshotMessages()); got != 1 {
		t.Errorf("retried delivery must be processed once, got %d messages", got)
	}
}

func TestHandleStart(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	if w := env.sendText("/start"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	waitFor(time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= 1 })
	assertContains(t, env.traffic.snapshotMessages(), "Hi!")
}

func TestHandleUnknownText(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	env.sendText("what can you do")
	waitFor(time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= 1 })
	assertContains(t, env.traffic.snapshotMessages(), "menu")
}

func TestIntakeFlowCreatesRecord(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	for i, text := range []string{telegram.ButtonAddTask, "write report", "quarterly numbers", "15.12.2030 10:00", "3"} {
		env.sendText(text)
		// Each step's reply must land before the next input so the
		// session advances deterministically.
		want := i + 1
		if !waitFor(5*time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= want }) {
			t.Fatalf("no reply for input %q", text)
		}
	}

	created := env.recordUC.createdInputs()
	if len(created) != 1 {
		t.Fatalf("expected one record, got %d", len(created))
	}
	got := created[0]
	if got.Title != "write report" || got.Description != "quarterly numbers" {
		t.Errorf("unexpected draft fields: %+v", got)
	}
	if got.DeadlineText != "15.12.2030 10:00" {
		t.Errorf("expected canonical deadline, got %q", got.DeadlineText)
	}
	if got.Priority != model.Priority(3) {
		t.Errorf("expected priority 3, got %d", got.Priority)
	}
	assertContains(t, env.traffic.snapshotMessages(), "Task created")
}

func TestIntakeCancel(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	env.sendText(telegram.ButtonAddTask)
	waitFor(time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= 1 })
	env.sendText("/cancel")
	waitFor(time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= 2 })

	assertContains(t, env.traffic.snapshotMessages(), "cancelled")
	if len(env.recordUC.createdInputs()) != 0 {
		t.Errorf("cancelled intake must not create a record")
	}
}

func TestAddTaskFoldsMenuKeyboard(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	env.sendText(telegram.ButtonAddTask)
	waitFor(time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= 1 })

	markup, ok := env.traffic.markupOf(intake.PromptTitle)
	if !ok {
		t.Fatalf("expected title prompt, got: %v", env.traffic.snapshotMessages())
	}
	if !strings.Contains(markup, `"remove_keyboard":true`) {
		t.Errorf("expected title prompt to remove the reply keyboard, markup: %s", markup)
	}
}

func TestHandleTaskList(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	env.recordUC.listOut = []model.Record{
		{ID: 1, Title: "write report", DeadlineText: "15.12.2030 10:00", Priority: 3},
		{ID: 2, Title: "call plumber", Description: "kitchen sink", DeadlineText: "01.01.2031 23:59", Priority: 1},
	}

	env.sendText(telegram.ButtonTaskList)
	waitFor(time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= 1 })

	msgs := env.traffic.snapshotMessages()
	assertContains(t, msgs, "*write report*")
	assertContains(t, msgs, "*call plumber*")
	assertContains(t, msgs, "kitchen sink")
	if mode, ok := env.traffic.modeOf("write report"); !ok || mode != "Markdown" {
		t.Errorf("expected task list sent with Markdown parse mode, got %q", mode)
	}
}

func TestHandleTaskList_Empty(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	env.sendText(telegram.ButtonTaskList)
	waitFor(time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= 1 })
	assertContains(t, env.traffic.snapshotMessages(), "no tasks")
}

func TestDeleteCallback(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	env.sendCallback("delete_7")
	waitFor(time.Second, func() bool { return len(env.recordUC.deletedIDs()) >= 1 })

	deleted := env.recordUC.deletedIDs()
	if len(deleted) != 1 || deleted[0] != 7 {
		t.Fatalf("expected delete of record 7, got %v", deleted)
	}
	waitFor(time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= 1 })
	assertContains(t, env.traffic.snapshotMessages(), "deleted")
}

func TestDeleteCallback_NotFound(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	env.recordUC.delErr = record.ErrNotFound
	env.sendCallback("delete_7")
	waitFor(time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= 1 })
	assertContains(t, env.traffic.snapshotMessages(), "Could not delete")
}

func TestPomodoroStartAndStop(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	env.sendCallback("work_25")
	if !waitFor(time.Second, func() bool { return env.timers.Active(456) }) {
		t.Fatalf("expected a running timer after work_25")
	}

	// The placeholder message carries the full session length.
	assertContains(t, env.traffic.snapshotMessages(), "25:00")

	// A second preset while running is rejected.
	env.sendCallback("rest_5")
	waitFor(time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= 2 })
	assertContains(t, env.traffic.snapshotMessages(), "already running")

	env.sendCallback("stop_timer")
	if !waitFor(time.Second, func() bool { return !env.timers.Active(456) }) {
		t.Fatalf("expected timer slot to free on stop")
	}
	if !waitFor(time.Second, func() bool {
		for _, e := range env.traffic.snapshotEdits() {
			if strings.Contains(e, "stopped") {
				return true
			}
		}
		return false
	}) {
		t.Errorf("expected a stopped render, got edits: %v", env.traffic.snapshotEdits())
	}
}

func TestStopWithoutTimer(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	env.sendCallback("stop_timer")
	waitFor(time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= 1 })
	assertContains(t, env.traffic.snapshotMessages(), "No timer")
}

func TestActivityReport(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	env.activityUC.report = activity.Report{
		RecordsWeek:  2,
		RecordsMonth: 5,
		RecordsTotal: 9,
		FocusMinutes: 75,
	}

	env.sendText(telegram.ButtonActivity)
	waitFor(time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= 1 })

	msgs := env.traffic.snapshotMessages()
	assertContains(t, msgs, "last 7 days: 2")
	assertContains(t, msgs, "all time: 9")
	assertContains(t, msgs, "75 min")
}

func TestActivityReport_Empty(t *testing.T) {
	env, tgSrv := newTestEnv(t)
	defer tgSrv.Close()

	env.sendText(telegram.ButtonActivity)
	waitFor(time.Second, func() bool { return len(env.traffic.snapshotMessages()) >= 1 })
	assertContains(t, env.traffic.snapshotMessages(), "No activity yet")
}
