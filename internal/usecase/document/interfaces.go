package document

import (
	"context"

	"github.com/futig/mindtrace-ai/internal/entity"
)

type Extractor interface {
	Extract(ctx context.Context, source string) (*entity.Document, error)
}

type Chunker interface {
	Chunk(doc *entity.Document, maxTokens int) ([]entity.Chunk, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	EnsureCollection(ctx context.Context, collection string, dimension int) error
	Upsert(ctx context.Context, collection string, points []entity.VectorPoint) error
	DeleteByProject(ctx context.Context, collection, projectID string) error
}

type PointsRecorder interface {
	AddIngestedPoints(collection string, n int)
}
