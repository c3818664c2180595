package cmd

import (
	"context"

	"github.com/futig/mindtrace-ai/internal/builder"
	"github.com/futig/mindtrace-ai/internal/entity"
)

// service is the pipeline the subcommands drive, either built in process
// or reached through a running MindTrace service.
type service interface {
	ExtractDocument(ctx context.Context, source string) (*entity.ExtractedDocument, error)
	ExtractAndChunk(ctx context.Context, source string) (*entity.ChunkedDocument, error)
	Ingest(ctx context.Context, source, projectID string) ([]entity.VectorPoint, error)
	Search(ctx context.Context, query, projectID string, limit int) ([]entity.SearchResult, error)
	Ask(ctx context.Context, question, projectID string, numResults int) (*entity.Answer, error)
	DeleteProject(ctx context.Context, collection, projectID string) error
	Analyze(ctx context.Context, oldDesc, newDesc string) (*entity.ChangeReport, error)
}

type localService struct {
	components *builder.Components
}

func (s localService) ExtractDocument(ctx context.Context, source string) (*entity.ExtractedDocument, error) {
	return s.components.Documents.ExtractDocument(ctx, source)
}

func (s localService) ExtractAndChunk(ctx context.Context, source string) (*entity.ChunkedDocument, error) {
	return s.components.Documents.ExtractAndChunk(ctx, source)
}

func (s localService) Ingest(ctx context.Context, source, projectID string) ([]entity.VectorPoint, error) {
	return s.components.Documents.Ingest(ctx, source, projectID)
}

func (s localService) Search(ctx context.Context, query, projectID string, limit int) ([]entity.SearchResult, error) {
	return s.components.Retrieval.Search(ctx, query, projectID, limit)
}

func (s localService) Ask(ctx context.Context, question, projectID string, numResults int) (*entity.Answer, error) {
	return s.components.Retrieval.Ask(ctx, question, projectID, numResults)
}

func (s localService) DeleteProject(ctx context.Context, collection, projectID string) error {
	return s.components.Documents.DeleteProject(ctx, collection, projectID)
}

func (s localService) Analyze(ctx context.Context, oldDesc, newDesc string) (*entity.ChangeReport, error) {
	return s.components.Changes.Analyze(ctx, oldDesc, newDesc)
}
