package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/futig/mindtrace-ai/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// limiterIdleTTL drops the limiter of a chat after an hour without updates
	limiterIdleTTL  = time.Hour
	warningInterval = 30 * time.Second
)

// chatLimit tracks the limiter of a single chat
type chatLimit struct {
	limiter *rate.Limiter

	mu            sync.Mutex
	lastWarningAt time.Time
}

// RateLimiterMiddleware limits updates per chat with a token bucket
type RateLimiterMiddleware struct {
	limits   *cache.Cache
	mu       sync.Mutex
	every    rate.Limit
	burst    int
	logger   *zap.Logger
	notifier notifier
	now      func() time.Time
}

// NewRateLimiterMiddleware allows requestsPerMinute updates per chat with
// bursts of up to burst updates.
func NewRateLimiterMiddleware(
	requestsPerMinute int,
	burst int,
	logger *zap.Logger,
	notifier notifier,
) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		limits:   cache.New(limiterIdleTTL, 10*time.Minute),
		every:    rate.Every(time.Minute / time.Duration(max(requestsPerMinute, 1))),
		burst:    max(burst, 1),
		logger:   logger,
		notifier: notifier,
		now:      time.Now,
	}
}

// Handle drops the update when its chat is over the limit
func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next Next) {
	userID, chatID, ok := origin(update)
	if !ok {
		next(update)
		return
	}

	if !rl.allow(chatID) {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
		)
		return
	}

	next(update)
}

func (rl *RateLimiterMiddleware) allow(chatID int64) bool {
	limit := rl.limitFor(chatID)
	now := rl.now()

	if limit.limiter.AllowN(now, 1) {
		return true
	}

	limit.mu.Lock()
	warn := now.Sub(limit.lastWarningAt) > warningInterval
	if warn {
		limit.lastWarningAt = now
	}
	limit.mu.Unlock()

	if warn {
		if err := rl.notifier.Send(context.Background(), chatID, render.ErrRateLimited, nil); err != nil {
			rl.logger.Error("failed to send rate limit warning",
				zap.Error(err),
				zap.Int64("chat_id", chatID),
			)
		}
	}
	return false
}

// limitFor returns the limiter of chatID and refreshes its idle expiration
func (rl *RateLimiterMiddleware) limitFor(chatID int64) *chatLimit {
	key := strconv.FormatInt(chatID, 10)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	var limit *chatLimit
	if v, ok := rl.limits.Get(key); ok {
		limit = v.(*chatLimit)
	} else {
		limit = &chatLimit{limiter: rate.NewLimiter(rl.every, rl.burst)}
	}
	rl.limits.Set(key, limit, cache.DefaultExpiration)
	return limit
}
