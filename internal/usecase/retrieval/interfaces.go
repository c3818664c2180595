package retrieval

import (
	"context"

	"github.com/futig/mindtrace-ai/internal/entity"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Completer interface {
	Complete(ctx context.Context, req entity.CompletionRequest) (string, error)
}

type Searcher interface {
	Search(ctx context.Context, collection string, query entity.VectorQuery) ([]entity.SearchResult, error)
}
