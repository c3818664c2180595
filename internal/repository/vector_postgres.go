package repository

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// VectorPostgres stores vector points in PostgreSQL with the pgvector extension
type VectorPostgres struct {
	db *pgxpool.Pool

	mu         sync.Mutex
	dimensions map[string]int
}

func NewVectorPostgres(db *pgxpool.Pool) *VectorPostgres {
	return &VectorPostgres{
		db:         db,
		dimensions: make(map[string]int),
	}
}

// RegisterVectorTypes teaches a pgx connection the vector type. Use it as the
// pool's AfterConnect hook once migrations have created the extension.
func RegisterVectorTypes(ctx context.Context, conn *pgx.Conn) error {
	return pgxvec.RegisterTypes(ctx, conn)
}

func (r *VectorPostgres) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if dim, ok := r.dimensions[collection]; ok {
		if dim != dimension {
			return fmt.Errorf("%w: collection %q has dimension %d, expected %d", entity.ErrStoreWrite, collection, dim, dimension)
		}
		return nil
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO vector_collections (name, dimension, distance) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO NOTHING`,
		collection, dimension, entity.DistanceCosine,
	)
	if err != nil {
		return fmt.Errorf("%w: register collection %q: %w", entity.ErrStoreWrite, collection, err)
	}

	var stored int
	if err := r.db.QueryRow(ctx, `SELECT dimension FROM vector_collections WHERE name = $1`, collection).Scan(&stored); err != nil {
		return fmt.Errorf("%w: read collection %q: %w", entity.ErrStoreWrite, collection, err)
	}
	if stored != dimension {
		return fmt.Errorf("%w: collection %q has dimension %d, expected %d", entity.ErrStoreWrite, collection, stored, dimension)
	}

	// DDL cannot take bind parameters, so the collection name is inlined as a literal
	indexSQL := fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s ON vector_points USING hnsw ((embedding::vector(%d)) vector_cosine_ops) WHERE collection = %s`,
		pgx.Identifier{hnswIndexName(collection)}.Sanitize(), dimension, quoteLiteral(collection),
	)
	if _, err := r.db.Exec(ctx, indexSQL); err != nil {
		return fmt.Errorf("%w: create vector index for %q: %w", entity.ErrStoreWrite, collection, err)
	}

	r.dimensions[collection] = dimension
	return nil
}

func (r *VectorPostgres) Upsert(ctx context.Context, collection string, points []entity.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", entity.ErrStoreWrite, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, p := range points {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return fmt.Errorf("%w: point id %q: %w", entity.ErrStoreWrite, p.ID, err)
		}

		batch.Queue(
			`INSERT INTO vector_points (collection, id, project_id, embedding, text, filename, page_numbers, title)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (collection, id) DO UPDATE SET
			     project_id = EXCLUDED.project_id,
			     embedding = EXCLUDED.embedding,
			     text = EXCLUDED.text,
			     filename = EXCLUDED.filename,
			     page_numbers = EXCLUDED.page_numbers,
			     title = EXCLUDED.title,
			     updated_at = now()`,
			collection, id, p.Payload.ProjectID, pgvector.NewVector(p.Vector),
			p.Payload.Text, p.Payload.Filename, p.Payload.PageNumbers, p.Payload.Title,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%w: upsert %d points: %w", entity.ErrStoreWrite, len(points), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", entity.ErrStoreWrite, err)
	}

	return nil
}

func (r *VectorPostgres) Search(ctx context.Context, collection string, query entity.VectorQuery) ([]entity.SearchResult, error) {
	dimension, found, err := r.collectionDimension(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrSearch, err)
	}
	if !found {
		return []entity.SearchResult{}, nil
	}

	// the cast matches the partial HNSW index expression
	sql := fmt.Sprintf(
		`SELECT id, project_id, text, filename, page_numbers, title,
		        1 - (embedding::vector(%[1]d) <=> $1) AS score
		   FROM vector_points
		  WHERE collection = $2 AND project_id = $3
		  ORDER BY embedding::vector(%[1]d) <=> $1
		  LIMIT $4`,
		dimension,
	)

	rows, err := r.db.Query(ctx, sql, pgvector.NewVector(query.Vector), collection, query.ProjectID, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrSearch, err)
	}
	defer rows.Close()

	results := make([]entity.SearchResult, 0, query.Limit)
	for rows.Next() {
		var (
			id      uuid.UUID
			payload entity.Payload
			score   float64
		)
		if err := rows.Scan(&id, &payload.ProjectID, &payload.Text, &payload.Filename, &payload.PageNumbers, &payload.Title, &score); err != nil {
			return nil, fmt.Errorf("%w: scan row: %w", entity.ErrSearch, err)
		}
		results = append(results, entity.ResultFromPayload(id.String(), payload, float32(score)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrSearch, err)
	}

	return results, nil
}

func (r *VectorPostgres) DeleteByProject(ctx context.Context, collection, projectID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM vector_points WHERE collection = $1 AND project_id = $2`, collection, projectID); err != nil {
		return fmt.Errorf("%w: delete project %q: %w", entity.ErrStoreWrite, projectID, err)
	}
	return nil
}

func (r *VectorPostgres) Health(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *VectorPostgres) collectionDimension(ctx context.Context, collection string) (int, bool, error) {
	r.mu.Lock()
	dim, ok := r.dimensions[collection]
	r.mu.Unlock()
	if ok {
		return dim, true, nil
	}

	err := r.db.QueryRow(ctx, `SELECT dimension FROM vector_collections WHERE name = $1`, collection).Scan(&dim)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read collection %q: %w", collection, err)
	}

	return dim, true, nil
}

func hnswIndexName(collection string) string {
	h := fnv.New64a()
	h.Write([]byte(collection))
	return fmt.Sprintf("vector_points_hnsw_%x", h.Sum64())
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
