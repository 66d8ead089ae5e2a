package telegram

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// Telegram allows roughly one message edit per second per chat; bursts are
// tolerated briefly before the API starts returning 429.
const (
	perChatRate  = rate.Limit(1)
	perChatBurst = 3
)

// sendLimiter throttles outgoing API calls per chat with auto-cleanup of
// idle chats.
type sendLimiter struct {
	limiters *expirable.LRU[int64, *rate.Limiter]
}

func newSendLimiter() *sendLimiter {
	return &sendLimiter{
		limiters: expirable.NewLRU[int64, *rate.Limiter](
			1000,          // max tracked chats
			nil,           // no eviction callback
			time.Minute*5, // TTL for idle chats
		),
	}
}

// wait blocks until the chat's limiter admits one send, or the context is
// cancelled. Cancellation is not treated as an error here; the subsequent
// HTTP request fails with the context error anyway.
func (sl *sendLimiter) wait(ctx context.Context, chatID int64) {
	limiter, ok := sl.limiters.Get(chatID)
	if !ok {
		limiter = rate.NewLimiter(perChatRate, perChatBurst)
		sl.limiters.Add(chatID, limiter)
	}
	_ = limiter.Wait(ctx)
}
