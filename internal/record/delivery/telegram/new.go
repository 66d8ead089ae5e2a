package telegram

import (
	"github.com/gin-gonic/gin"

	"deadline-buddy/internal/activity"
	"deadline-buddy/internal/intake"
	"deadline-buddy/internal/record"
	"deadline-buddy/internal/timer"
	pkgLog "deadline-buddy/pkg/log"
	pkgTelegram "deadline-buddy/pkg/telegram"
)

// Handler is the interface for the Telegram delivery handler.
type Handler interface {
	HandleWebhook(c *gin.Context)
}

// New creates a new Telegram delivery handler.
func New(
	l pkgLog.Logger,
	recordUC record.UseCase,
	activityUC activity.UseCase,
	intakeMgr *intake.Manager,
	timerMgr *timer.Manager,
	renderer *TimerRenderer,
	bot *pkgTelegram.Bot,
	security *SecurityValidator,
) Handler {
	return &handler{
		l:          l,
		recordUC:   recordUC,
		activityUC: activityUC,
		intake:     intakeMgr,
		timers:     timerMgr,
		renderer:   renderer,
		bot:        bot,
		security:   security,
	}
}
