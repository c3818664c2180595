package changes

import (
	"context"

	"github.com/futig/mindtrace-ai/internal/entity"
)

type Completer interface {
	Complete(ctx context.Context, req entity.CompletionRequest) (string, error)
}
