package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/futig/mindtrace-ai/internal/integration/common"
	pkghttp "github.com/futig/mindtrace-ai/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var _ Store = (*Qdrant)(nil)

// Qdrant implements Store using Qdrant's REST API.
type Qdrant struct {
	connector *pkghttp.Connector
	logger    *zap.Logger

	mu      sync.Mutex
	ensured map[string]struct{}
}

// NewQdrant creates a Qdrant-backed vector store.
func NewQdrant(cfg config.QdrantConfig, logger *zap.Logger, opts ...pkghttp.HttpOpts) (*Qdrant, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}

	extra := append([]pkghttp.HttpOpts{pkghttp.WithAPIKeyHeader("api-key", cfg.APIKey)}, opts...)

	return &Qdrant{
		connector: common.NewBaseConnector(strings.TrimRight(cfg.URL, "/"), cfg.HTTPClientConfig, logger, extra...),
		logger:    logger,
		ensured:   make(map[string]struct{}),
	}, nil
}

type qdrantFilter struct {
	Must []qdrantCondition `json:"must"`
}

type qdrantCondition struct {
	Key   string         `json:"key"`
	Match map[string]any `json:"match"`
}

func projectFilter(projectID string) *qdrantFilter {
	return &qdrantFilter{Must: []qdrantCondition{{
		Key:   "project_id",
		Match: map[string]any{"value": projectID},
	}}}
}

type qdrantCollectionInfo struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

type qdrantScoredPoint struct {
	ID      json.RawMessage `json:"id"`
	Score   float32         `json:"score"`
	Payload entity.Payload  `json:"payload"`
}

type qdrantSearchResponse struct {
	Result []qdrantScoredPoint `json:"result"`
}

func collectionPath(collection string) string {
	return "/collections/" + url.PathEscape(collection)
}

func isNotFound(err error) bool {
	var httpErr *pkghttp.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// EnsureCollection creates the collection on first use. Only successful
// checks are remembered, so a transient failure is retried on the next call.
func (q *Qdrant) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.ensured[collection]; ok {
		return nil
	}

	path := collectionPath(collection)

	var info qdrantCollectionInfo
	err := q.connector.DoRequest(ctx, http.MethodGet, path, nil, &info)
	switch {
	case err == nil:
		if size := info.Result.Config.Params.Vectors.Size; size != 0 && size != dimension {
			return fmt.Errorf("%w: collection %q has dimension %d, expected %d", entity.ErrStoreWrite, collection, size, dimension)
		}
	case isNotFound(err):
		ctxzap.Info(ctx, "creating qdrant collection",
			zap.String("collection", collection),
			zap.Int("dimension", dimension),
		)
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dimension,
				"distance": entity.DistanceCosine,
			},
		}
		if err := q.connector.DoRequest(ctx, http.MethodPut, path, body, nil); err != nil {
			return fmt.Errorf("%w: create collection %q: %w", entity.ErrStoreWrite, collection, err)
		}
	default:
		return fmt.Errorf("%w: get collection %q: %w", entity.ErrStoreWrite, collection, err)
	}

	index := map[string]any{
		"field_name":   "project_id",
		"field_schema": "keyword",
	}
	if err := q.connector.DoRequest(ctx, http.MethodPut, path+"/index?wait=true", index, nil); err != nil {
		return fmt.Errorf("%w: create project_id index: %w", entity.ErrStoreWrite, err)
	}

	q.ensured[collection] = struct{}{}
	return nil
}

func (q *Qdrant) Upsert(ctx context.Context, collection string, points []entity.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	body := map[string]any{"points": points}
	if err := q.connector.DoRequest(ctx, http.MethodPut, collectionPath(collection)+"/points?wait=true", body, nil); err != nil {
		return fmt.Errorf("%w: upsert %d points: %w", entity.ErrStoreWrite, len(points), err)
	}

	ctxzap.Debug(ctx, "qdrant upsert completed", zap.Int("points", len(points)))
	return nil
}

func (q *Qdrant) Search(ctx context.Context, collection string, query entity.VectorQuery) ([]entity.SearchResult, error) {
	body := map[string]any{
		"vector":       query.Vector,
		"limit":        query.Limit,
		"with_payload": true,
		"filter":       projectFilter(query.ProjectID),
	}

	var resp qdrantSearchResponse
	err := q.connector.DoRequest(ctx, http.MethodPost, collectionPath(collection)+"/points/search", body, &resp)
	if err != nil {
		if isNotFound(err) {
			// nothing was ever ingested
			return []entity.SearchResult{}, nil
		}
		return nil, fmt.Errorf("%w: %w", entity.ErrSearch, err)
	}

	results := make([]entity.SearchResult, 0, len(resp.Result))
	for _, p := range resp.Result {
		results = append(results, entity.ResultFromPayload(strings.Trim(string(p.ID), `"`), p.Payload, p.Score))
	}

	return results, nil
}

func (q *Qdrant) DeleteByProject(ctx context.Context, collection, projectID string) error {
	body := map[string]any{"filter": projectFilter(projectID)}

	err := q.connector.DoRequest(ctx, http.MethodPost, collectionPath(collection)+"/points/delete?wait=true", body, nil)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("%w: delete project %q: %w", entity.ErrStoreWrite, projectID, err)
	}

	return nil
}

func (q *Qdrant) Health(ctx context.Context) error {
	return q.connector.DoRequest(ctx, http.MethodGet, "/healthz", nil, nil)
}
