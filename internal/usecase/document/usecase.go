package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/futig/mindtrace-ai/internal/pkg/logger"
	"github.com/futig/mindtrace-ai/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DocumentUsecase runs the extract, chunk, embed and index pipeline
type DocumentUsecase struct {
	extractor        Extractor
	chunker          Chunker
	embedder         Embedder
	store            VectorStore
	recorder         PointsRecorder
	maxTokens        int
	embedConcurrency int
	logger           *zap.Logger
}

// NewUsecase creates a new document use case
func NewUsecase(
	extractor Extractor,
	chunker Chunker,
	embedder Embedder,
	store VectorStore,
	recorder PointsRecorder,
	chunkerCfg config.ChunkerConfig,
	ingestCfg config.IngestConfig,
	logger *zap.Logger,
) *DocumentUsecase {
	return &DocumentUsecase{
		extractor:        extractor,
		chunker:          chunker,
		embedder:         embedder,
		store:            store,
		recorder:         recorder,
		maxTokens:        chunkerCfg.MaxTokens,
		embedConcurrency: max(ingestCfg.EmbedConcurrency, 1),
		logger:           logger,
	}
}

// ExtractDocument converts a source into its markdown and structured renderings
func (uc *DocumentUsecase) ExtractDocument(ctx context.Context, source string) (*entity.ExtractedDocument, error) {
	doc, err := uc.extract(ctx, source)
	if err != nil {
		return nil, err
	}

	return &entity.ExtractedDocument{
		Markdown: doc.Markdown(),
		JSON:     doc,
	}, nil
}

// ExtractUpload stores an uploaded file in a temporary directory, extracts it
// and removes the directory whatever the outcome
func (uc *DocumentUsecase) ExtractUpload(ctx context.Context, filename string, r io.Reader) (*entity.ExtractedDocument, error) {
	ctx = logger.WithAction(ctx, "extract_upload")

	dir, err := os.MkdirTemp("", "mindtrace-upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			ctxzap.Warn(ctx, "failed to remove temp upload", zap.String("dir", dir), zap.Error(err))
		}
	}()

	path := filepath.Join(dir, validator.SanitizeFilename(filename))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: write upload: %w", entity.ErrInvalidFile, err)
	}

	ctxzap.Debug(ctx, "upload stored", zap.String("filename", filename), zap.Int64("size", written))

	return uc.ExtractDocument(ctx, path)
}

// ExtractAndChunk extracts a source and splits it with the configured token budget
func (uc *DocumentUsecase) ExtractAndChunk(ctx context.Context, source string) (*entity.ChunkedDocument, error) {
	doc, err := uc.extract(ctx, source)
	if err != nil {
		return nil, err
	}

	chunks, err := uc.chunker.Chunk(doc, uc.maxTokens)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "document chunked",
		zap.String("source", source),
		zap.Int("chunks", len(chunks)),
	)

	return &entity.ChunkedDocument{
		Markdown: doc.Markdown(),
		JSON:     doc,
		Chunks:   chunks,
	}, nil
}

// Ingest extracts, chunks and embeds a source, then writes one point per
// chunk in a single upsert. Point ids depend only on the project, the source
// and the chunk index, so ingesting the same source twice replaces the points.
func (uc *DocumentUsecase) Ingest(ctx context.Context, source, projectID string) ([]entity.VectorPoint, error) {
	source = normalizeSource(source)
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("%w: project_id", entity.ErrMissingField)
	}

	ctx = logger.WithAction(logger.WithProject(ctx, projectID), "ingest")

	chunked, err := uc.ExtractAndChunk(ctx, source)
	if err != nil {
		return nil, err
	}
	chunks := chunked.Chunks

	if err := uc.store.EnsureCollection(ctx, entity.DefaultCollection, entity.VectorSize); err != nil {
		return nil, err
	}

	vectors, err := uc.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	points := make([]entity.VectorPoint, len(chunks))
	for i, chunk := range chunks {
		points[i] = entity.VectorPoint{
			ID:     PointID(projectID, source, i),
			Vector: vectors[i],
			Payload: entity.Payload{
				ProjectID:   projectID,
				Text:        chunk.Text,
				Filename:    entity.StringPtr(chunk.Meta.Filename),
				PageNumbers: chunk.Meta.PageNumbers,
				Title:       entity.StringPtr(chunk.Title()),
			},
		}
	}

	if err := uc.store.Upsert(ctx, entity.DefaultCollection, points); err != nil {
		return nil, err
	}

	uc.recorder.AddIngestedPoints(entity.DefaultCollection, len(points))

	ctxzap.Info(ctx, "document ingested",
		zap.String("source", source),
		zap.Int("points", len(points)),
	)

	return points, nil
}

// DeleteProject removes every point of a project from a collection
func (uc *DocumentUsecase) DeleteProject(ctx context.Context, collection, projectID string) error {
	collection = strings.TrimSpace(collection)
	projectID = strings.TrimSpace(projectID)
	if collection == "" {
		return fmt.Errorf("%w: collection", entity.ErrMissingField)
	}
	if projectID == "" {
		return fmt.Errorf("%w: project_id", entity.ErrMissingField)
	}

	ctx = logger.WithAction(logger.WithProject(ctx, projectID), "delete_project")

	if err := uc.store.DeleteByProject(ctx, collection, projectID); err != nil {
		return err
	}

	ctxzap.Info(ctx, "project points deleted", zap.String("collection", collection))

	return nil
}

// PointID derives a stable UUIDv5 for a chunk of a source inside a project
func PointID(projectID, source string, index int) string {
	name := projectID + "\x00" + source + "\x00" + strconv.Itoa(index)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// normalizeSource makes local paths absolute so that "./a.md" and its
// absolute form map to the same point ids. URLs are kept as given.
func normalizeSource(source string) string {
	source = strings.TrimSpace(source)
	if source == "" || strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return source
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return filepath.Clean(source)
	}
	return abs
}

func (uc *DocumentUsecase) extract(ctx context.Context, source string) (*entity.Document, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: url_or_path", entity.ErrMissingField)
	}

	doc, err := uc.extractor.Extract(ctx, source)
	if err != nil {
		return nil, err
	}

	ctxzap.Debug(ctx, "document extracted",
		zap.String("source", source),
		zap.Int("items", len(doc.Items)),
		zap.Int("pages", doc.Pages),
	)

	return doc, nil
}

// embedChunks embeds every chunk with bounded parallelism, keeping chunk order
func (uc *DocumentUsecase) embedChunks(ctx context.Context, chunks []entity.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.embedConcurrency)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			vector, err := uc.embedder.Embed(gctx, chunk.Text)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			vectors[i] = vector
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}
