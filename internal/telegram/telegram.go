// Package telegram is a chat front end to the retrieval flow: a chat binds
// itself to a project, then searches it or asks questions in free text.
package telegram

import (
	"context"
	"fmt"

	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/telegram/bot"
	"github.com/futig/mindtrace-ai/internal/telegram/handlers"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(cfg *config.TelegramConfig, retrieval handlers.RetrievalUsecase, logger *zap.Logger) (Bot, error) {
	b, err := bot.New(cfg, retrieval, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	logger.Info("telegram bot initialized successfully",
		zap.Int("num_results", cfg.NumResults),
		zap.Int("rate_limit_per_minute", cfg.RateLimitPerMinute),
	)

	return b, nil
}
