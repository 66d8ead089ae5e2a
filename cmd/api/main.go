package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deadline-buddy/config"
	activityRepo "deadline-buddy/internal/activity/repository/sqlite"
	activityUC "deadline-buddy/internal/activity/usecase"
	"deadline-buddy/internal/httpserver"
	"deadline-buddy/internal/intake"
	tgDelivery "deadline-buddy/internal/record/delivery/telegram"
	recordRepo "deadline-buddy/internal/record/repository/sqlite"
	recordUC "deadline-buddy/internal/record/usecase"
	"deadline-buddy/internal/storage"
	"deadline-buddy/internal/timer"
	"deadline-buddy/pkg/deadline"
	"deadline-buddy/pkg/gcalendar"
	"deadline-buddy/pkg/log"
	"deadline-buddy/pkg/telegram"
)

// @title       Deadline Buddy API
// @description Telegram assistant for tracking tasks with deadlines and running focus timers.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Deadline Buddy...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)

	// 3. Storage
	store, err := storage.New(cfg.SQLite.Path)
	if err != nil {
		logger.Error(ctx, "Failed to open storage: ", err)
		return
	}
	defer store.Close()
	logger.Infof(ctx, "SQLite storage ready at %s", cfg.SQLite.Path)

	// 4. Deadline parser
	dateParser, err := deadline.NewParser(cfg.Deadline.Timezone)
	if err != nil {
		logger.Warnf(ctx, "Invalid timezone %q, falling back to UTC: %v", cfg.Deadline.Timezone, err)
		dateParser, _ = deadline.NewParser("UTC")
	}

	// 5. Telegram Bot client
	telegramBot := telegram.NewBot(cfg.Telegram.BotToken)

	// 6. Google Calendar client (optional)
	var calendarClient *gcalendar.Client
	if cfg.GoogleCalendar.CredentialsPath != "" {
		calendarClient, err = gcalendar.NewClientFromCredentialsFile(ctx, cfg.GoogleCalendar.CredentialsPath)
		if err != nil {
			logger.Warnf(ctx, "Google Calendar not available (optional): %v", err)
			logger.Warn(ctx, "→ Run `go run scripts/gcal-auth/main.go` to generate token.json")
			calendarClient = nil
		} else {
			// Probe the calendar before trusting the mirror. Stale or
			// revoked tokens surface here instead of on the first create.
			now := time.Now()
			events, probeErr := calendarClient.ListEvents(ctx, gcalendar.ListEventsRequest{
				CalendarID: cfg.GoogleCalendar.CalendarID,
				TimeMin:    now,
				TimeMax:    now.Add(24 * time.Hour),
				MaxResults: 10,
			})
			if probeErr != nil {
				logger.Warnf(ctx, "Google Calendar unreachable, mirror disabled: %v", probeErr)
				logger.Warn(ctx, "→ Run `go run scripts/gcal-auth/main.go` to refresh token.json")
				calendarClient = nil
			} else {
				logger.Infof(ctx, "✅ Google Calendar initialized (%d events in the next 24h)", len(events))
			}
		}
	}

	// 7. Repositories and use cases
	records := recordRepo.New(store.DB())
	activities := activityRepo.New(store.DB())

	recUC := recordUC.New(logger, records, calendarClient, cfg.Deadline.Timezone, cfg.GoogleCalendar.CalendarID)
	actUC := activityUC.New(logger, activities, records)

	// 8. Conversation and timer managers
	intakeMgr := intake.NewManager(logger, intake.NewMachine(dateParser), tgDelivery.NewRecordSink(recUC))
	renderer := tgDelivery.NewTimerRenderer(logger, telegramBot)
	timerMgr := timer.New(logger, renderer, actUC)

	// 9. Telegram delivery handler
	security := tgDelivery.NewSecurityValidator(tgDelivery.SecurityConfig{
		SecretToken:     cfg.Telegram.SecretToken,
		RateLimitPerMin: cfg.Telegram.RateLimitPerMin,
	})
	telegramHandler := tgDelivery.New(logger, recUC, actUC, intakeMgr, timerMgr, renderer, telegramBot, security)

	// 10. Register webhook: auto-detect ngrok or fallback to manual config
	webhookURL := cfg.Telegram.WebhookURL
	if webhookURL == "" {
		ngrokURL, ngrokErr := detectNgrokURL(ctx, "http://ngrok:4040")
		if ngrokErr != nil {
			logger.Warnf(ctx, "Could not detect ngrok URL: %v", ngrokErr)
		} else {
			webhookURL = ngrokURL + "/webhook/telegram"
			logger.Infof(ctx, "Auto-detected ngrok URL: %s", webhookURL)
		}
	}

	if webhookURL != "" {
		if whErr := telegramBot.SetWebhook(webhookURL, cfg.Telegram.SecretToken); whErr != nil {
			logger.Warnf(ctx, "Failed to set Telegram webhook: %v", whErr)
		} else {
			logger.Infof(ctx, "✅ Telegram webhook registered at %s", webhookURL)
		}
	}

	// 11. HTTP Server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:          logger,
		Port:            cfg.HTTPServer.Port,
		Mode:            cfg.HTTPServer.Mode,
		Environment:     cfg.Environment.Name,
		TelegramHandler: telegramHandler,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 12. Run
	if err := httpServer.Run(ctx); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
