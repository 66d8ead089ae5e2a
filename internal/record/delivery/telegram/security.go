package telegram

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// SecurityConfig holds webhook security settings.
type SecurityConfig struct {
	SecretToken     string // Shared secret sent back by Telegram in each delivery
	RateLimitPerMin int    // Max updates per minute per sender
}

// SecurityValidator validates incoming webhook deliveries.
type SecurityValidator struct {
	config      SecurityConfig
	rateLimiter *rateLimiter
	seenUpdates *expirable.LRU[int64, struct{}]
}

func NewSecurityValidator(config SecurityConfig) *SecurityValidator {
	return &SecurityValidator{
		config:      config,
		rateLimiter: newRateLimiter(config.RateLimitPerMin),
		seenUpdates: expirable.NewLRU[int64, struct{}](
			4096,
			nil,
			time.Minute*10,
		),
	}
}

// ValidateSecretToken verifies the X-Telegram-Bot-Api-Secret-Token header
// against the token registered with setWebhook.
func (v *SecurityValidator) ValidateSecretToken(token string) error {
	if v.config.SecretToken == "" {
		return fmt.Errorf("webhook secret token not configured")
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(v.config.SecretToken)) != 1 {
		return fmt.Errorf("secret token verification failed")
	}

	return nil
}

// CheckRateLimit enforces per-sender rate limiting.
func (v *SecurityValidator) CheckRateLimit(senderID int64) error {
	return v.rateLimiter.Allow(senderID)
}

// SeenUpdate records the update ID and reports whether it was already
// delivered. Telegram retries deliveries until acknowledged, so retried
// updates must not be processed twice.
func (v *SecurityValidator) SeenUpdate(updateID int64) bool {
	if _, ok := v.seenUpdates.Get(updateID); ok {
		return true
	}
	v.seenUpdates.Add(updateID, struct{}{})
	return false
}

// rateLimiter keeps a token bucket per sender with auto-cleanup.
type rateLimiter struct {
	limiters *expirable.LRU[int64, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func newRateLimiter(requestsPerMin int) *rateLimiter {
	burst := requestsPerMin / 10
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		limiters: expirable.NewLRU[int64, *rate.Limiter](
			1000,
			nil,
			time.Minute*5,
		),
		rate:  rate.Limit(float64(requestsPerMin) / 60.0),
		burst: burst,
	}
}

func (rl *rateLimiter) Allow(key int64) error {
	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters.Add(key, limiter)
	}

	if !limiter.Allow() {
		return fmt.Errorf("rate limit exceeded for sender %d", key)
	}
	return nil
}
