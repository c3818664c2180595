package keyboard

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback actions
const (
	ActionAsk    = "ask"
	ActionUnbind = "unbind"
)

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// SearchResultsKeyboard is attached to search results: it turns the last
// search into a question or drops the project binding.
func (b *Builder) SearchResultsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 Obtenir une réponse", EncodeCallback("action", ActionAsk)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Changer de projet", EncodeCallback("action", ActionUnbind)),
		),
	)
}
