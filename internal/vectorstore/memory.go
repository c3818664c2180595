package vectorstore

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/futig/mindtrace-ai/internal/entity"
)

var _ Store = (*Memory)(nil)

type memoryCollection struct {
	dimension int
	points    map[string]entity.VectorPoint
}

// Memory is an in-process Store with exact cosine search. Used by tests and
// when mocks are enabled.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]*memoryCollection),
	}
}

func (m *Memory) EnsureCollection(_ context.Context, collection string, dimension int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.collections[collection]; ok {
		if c.dimension != dimension {
			return fmt.Errorf("%w: collection %q has dimension %d, expected %d", entity.ErrStoreWrite, collection, c.dimension, dimension)
		}
		return nil
	}

	m.collections[collection] = &memoryCollection{
		dimension: dimension,
		points:    make(map[string]entity.VectorPoint),
	}
	return nil
}

func (m *Memory) Upsert(_ context.Context, collection string, points []entity.VectorPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collection]
	if !ok {
		return fmt.Errorf("%w: collection %q does not exist", entity.ErrStoreWrite, collection)
	}

	// validate the whole batch first so a bad point leaves the store untouched
	for _, p := range points {
		if len(p.Vector) != c.dimension {
			return fmt.Errorf("%w: point %s has dimension %d, expected %d", entity.ErrStoreWrite, p.ID, len(p.Vector), c.dimension)
		}
		if p.Payload.ProjectID == "" {
			return fmt.Errorf("%w: point %s has no project_id", entity.ErrStoreWrite, p.ID)
		}
	}

	for _, p := range points {
		p.Vector = slices.Clone(p.Vector)
		c.points[p.ID] = p
	}
	return nil
}

func (m *Memory) Search(_ context.Context, collection string, query entity.VectorQuery) ([]entity.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		return []entity.SearchResult{}, nil
	}
	if len(query.Vector) != c.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, expected %d", entity.ErrSearch, len(query.Vector), c.dimension)
	}

	results := make([]entity.SearchResult, 0)
	for _, p := range c.points {
		if p.Payload.ProjectID != query.ProjectID {
			continue
		}
		results = append(results, entity.ResultFromPayload(p.ID, p.Payload, cosine(query.Vector, p.Vector)))
	}

	slices.SortFunc(results, func(a, b entity.SearchResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}
	return results, nil
}

func (m *Memory) DeleteByProject(_ context.Context, collection, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collection]
	if !ok {
		return nil
	}
	for id, p := range c.points {
		if p.Payload.ProjectID == projectID {
			delete(c.points, id)
		}
	}
	return nil
}

func (m *Memory) Health(context.Context) error {
	return nil
}

// Count returns the number of points stored in a collection
func (m *Memory) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if c, ok := m.collections[collection]; ok {
		return len(c.points)
	}
	return 0
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
