// Package vectorstore holds the vector store backends: Qdrant over REST and
// an in-process store used by tests and mock mode. The pgvector backend lives
// in the repository package next to its migrations.
package vectorstore

import (
	"context"

	"github.com/futig/mindtrace-ai/internal/entity"
)

// Store is the vector store interface.
type Store interface {
	// EnsureCollection creates the collection and its project_id index if needed.
	EnsureCollection(ctx context.Context, collection string, dimension int) error

	// Upsert writes points in one batch. Points with an existing ID are replaced.
	Upsert(ctx context.Context, collection string, points []entity.VectorPoint) error

	// Search returns the nearest points of one project, best first.
	Search(ctx context.Context, collection string, query entity.VectorQuery) ([]entity.SearchResult, error)

	// DeleteByProject removes every point whose payload project_id matches.
	DeleteByProject(ctx context.Context, collection, projectID string) error

	// Health checks if the store is reachable.
	Health(ctx context.Context) error
}
