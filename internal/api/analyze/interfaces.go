package analyze

import (
	"context"
	"io"

	"github.com/futig/mindtrace-ai/internal/entity"
)

type DocumentUsecase interface {
	ExtractUpload(ctx context.Context, filename string, r io.Reader) (*entity.ExtractedDocument, error)
	ExtractAndChunk(ctx context.Context, source string) (*entity.ChunkedDocument, error)
	Ingest(ctx context.Context, source, projectID string) ([]entity.VectorPoint, error)
	DeleteProject(ctx context.Context, collection, projectID string) error
}

type RetrievalUsecase interface {
	Search(ctx context.Context, query, projectID string, limit int) ([]entity.SearchResult, error)
	Ask(ctx context.Context, question, projectID string, numResults int) (*entity.Answer, error)
}

type ChangesUsecase interface {
	Analyze(ctx context.Context, oldDesc, newDesc string) (*entity.ChangeReport, error)
}
