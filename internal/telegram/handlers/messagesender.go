package handlers

import (
	"context"
	"fmt"

	"github.com/futig/mindtrace-ai/internal/pkg/retry"
	"github.com/futig/mindtrace-ai/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// botAPI is the subset of *tgbotapi.BotAPI the sender uses
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// MessageSender provides centralized message sending functionality
type MessageSender struct {
	bot    botAPI
	retry  *retry.RetryConfig
	logger *zap.Logger
}

// NewMessageSender creates a new MessageSender
func NewMessageSender(bot botAPI, logger *zap.Logger) *MessageSender {
	return &MessageSender{
		bot:    bot,
		retry:  retry.DefaultRetryConfig(),
		logger: logger,
	}
}

// Send delivers text to the chat, split into several messages when it is
// too long. The markup goes with the last part.
func (s *MessageSender) Send(ctx context.Context, chatID int64, text string, markup any) error {
	parts := render.SplitMessage(text, render.MaxMessageLength)
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		if markup != nil && i == len(parts)-1 {
			msg.ReplyMarkup = markup
		}

		err := retry.Do(ctx, s.retry, func() error {
			_, err := s.bot.Send(msg)
			return err
		}, func(attempt uint, err error) {
			s.logger.Warn("retrying message send",
				zap.Uint("attempt", attempt+1),
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		})
		if err != nil {
			s.logger.Error("failed to send message",
				zap.Error(err),
				zap.Int64("chat_id", chatID),
			)
			return fmt.Errorf("send message: %w", err)
		}
	}

	return nil
}

// SendTyping shows the "typing" indicator for about five seconds
func (s *MessageSender) SendTyping(chatID int64) error {
	_, err := s.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	return err
}

// AnswerCallback acknowledges a button press
func (s *MessageSender) AnswerCallback(callbackID, text string) {
	if _, err := s.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		s.logger.Error("failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}
