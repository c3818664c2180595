package handlers

import (
	"context"

	"github.com/futig/mindtrace-ai/internal/entity"
)

// RetrievalUsecase is the part of the retrieval flow the bot exposes
type RetrievalUsecase interface {
	Search(ctx context.Context, query, projectID string, limit int) ([]entity.SearchResult, error)
	Ask(ctx context.Context, question, projectID string, numResults int) (*entity.Answer, error)
}

// Sender delivers bot output to a chat
type Sender interface {
	Send(ctx context.Context, chatID int64, text string, markup any) error
	SendTyping(chatID int64) error
}
