package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// typingInterval is below the five second lifetime of a chat action
const typingInterval = 4 * time.Second

type typer interface {
	SendTyping(chatID int64) error
}

// TypingNotifier sends periodic "typing" actions while a slow request runs
type TypingNotifier struct {
	sender  typer
	chatID  int64
	done    chan struct{}
	logger  *zap.Logger
	started bool
}

// NewTypingNotifier creates a new typing indicator
func NewTypingNotifier(sender typer, chatID int64, logger *zap.Logger) *TypingNotifier {
	return &TypingNotifier{
		sender: sender,
		chatID: chatID,
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start sends the first action immediately, then one every typingInterval
func (t *TypingNotifier) Start(ctx context.Context) {
	if t.started {
		return
	}
	t.started = true

	if err := t.sender.SendTyping(t.chatID); err != nil {
		t.logger.Warn("failed to send initial typing action",
			zap.Error(err),
			zap.Int64("chat_id", t.chatID),
		)
	}

	go func() {
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := t.sender.SendTyping(t.chatID); err != nil {
					t.logger.Warn("failed to send typing action",
						zap.Error(err),
						zap.Int64("chat_id", t.chatID),
					)
				}
			case <-t.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops sending typing indicators
func (t *TypingNotifier) Stop() {
	if !t.started {
		return
	}

	close(t.done)
	t.started = false
}
