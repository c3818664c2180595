package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/futig/mindtrace-ai/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// RetrievalUsecase answers project scoped searches and questions
type RetrievalUsecase struct {
	embedder  Embedder
	completer Completer
	searcher  Searcher
	logger    *zap.Logger
}

// NewUsecase creates a new retrieval use case
func NewUsecase(embedder Embedder, completer Completer, searcher Searcher, logger *zap.Logger) *RetrievalUsecase {
	return &RetrievalUsecase{
		embedder:  embedder,
		completer: completer,
		searcher:  searcher,
		logger:    logger,
	}
}

// Search returns the chunks of a project closest to the query, best first
func (uc *RetrievalUsecase) Search(ctx context.Context, query, projectID string, limit int) ([]entity.SearchResult, error) {
	query = strings.TrimSpace(query)
	projectID = strings.TrimSpace(projectID)
	if err := validateQuery(query, projectID, limit, "limit"); err != nil {
		return nil, err
	}

	ctx = logger.WithAction(logger.WithProject(ctx, projectID), "search")

	results, err := uc.search(ctx, query, projectID, limit)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "search completed", zap.Int("results", len(results)))

	return results, nil
}

// Ask retrieves the best chunks for a question and lets the chat model answer from them
func (uc *RetrievalUsecase) Ask(ctx context.Context, question, projectID string, numResults int) (*entity.Answer, error) {
	question = strings.TrimSpace(question)
	projectID = strings.TrimSpace(projectID)
	if err := validateQuery(question, projectID, numResults, "num_results"); err != nil {
		return nil, err
	}

	ctx = logger.WithAction(logger.WithProject(ctx, projectID), "ask")

	results, err := uc.search(ctx, question, projectID, numResults)
	if err != nil {
		return nil, err
	}

	contexts := make([]entity.Context, len(results))
	for i, r := range results {
		contexts[i] = entity.ContextFromResult(r)
	}

	answer, err := uc.completer.Complete(ctx, buildAnswerRequest(question, contexts))
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "question answered", zap.Int("contexts", len(contexts)))

	return &entity.Answer{
		Question: question,
		Answer:   answer,
		Contexts: contexts,
	}, nil
}

func (uc *RetrievalUsecase) search(ctx context.Context, query, projectID string, limit int) ([]entity.SearchResult, error) {
	// Both failures are search failures; the embedding cause stays matchable.
	vector, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrSearch, err)
	}

	results, err := uc.searcher.Search(ctx, entity.DefaultCollection, entity.VectorQuery{
		Vector:    vector,
		ProjectID: projectID,
		Limit:     limit,
	})
	if err != nil {
		if errors.Is(err, entity.ErrSearch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", entity.ErrSearch, err)
	}

	return results, nil
}

func validateQuery(query, projectID string, limit int, limitName string) error {
	if query == "" {
		return fmt.Errorf("%w: query", entity.ErrMissingField)
	}
	if projectID == "" {
		return fmt.Errorf("%w: project_id", entity.ErrMissingField)
	}
	if limit < 1 || limit > entity.MaxResultsPerSearch {
		return fmt.Errorf("%w: %s must be between 1 and %d, got %d", entity.ErrInvalidParameter, limitName, entity.MaxResultsPerSearch, limit)
	}
	return nil
}
