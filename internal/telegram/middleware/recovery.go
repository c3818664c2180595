package middleware

import (
	"context"
	"runtime/debug"

	"github.com/futig/mindtrace-ai/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RecoveryMiddleware recovers from panics
type RecoveryMiddleware struct {
	logger   *zap.Logger
	notifier notifier
}

// NewRecoveryMiddleware creates a new recovery middleware
func NewRecoveryMiddleware(logger *zap.Logger, notifier notifier) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		logger:   logger,
		notifier: notifier,
	}
}

// Handle recovers from a panic in next and tells the chat something failed
func (m *RecoveryMiddleware) Handle(update tgbotapi.Update, next Next) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		m.logger.Error("panic recovered in telegram handler",
			zap.Any("panic", r),
			zap.String("stack", string(debug.Stack())),
			zap.Int("update_id", update.UpdateID),
		)

		if _, chatID, ok := origin(update); ok {
			if err := m.notifier.Send(context.Background(), chatID, render.ErrGeneric, nil); err != nil {
				m.logger.Error("failed to send error message",
					zap.Error(err),
					zap.Int64("chat_id", chatID),
				)
			}
		}
	}()

	next(update)
}
