// Package middleware wraps Telegram update handling the way HTTP middleware
// wraps requests: each stage receives the update and the next stage.
package middleware

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Next processes an update
type Next func(tgbotapi.Update)

// notifier sends a plain text message to a chat
type notifier interface {
	Send(ctx context.Context, chatID int64, text string, markup any) error
}

// origin extracts the user and chat of an update; ok is false for update
// kinds the bot does not handle.
func origin(update tgbotapi.Update) (userID, chatID int64, ok bool) {
	switch {
	case update.Message != nil:
		if update.Message.From != nil {
			userID = update.Message.From.ID
		}
		return userID, update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.From.ID, update.CallbackQuery.Message.Chat.ID, true
	default:
		return 0, 0, false
	}
}
