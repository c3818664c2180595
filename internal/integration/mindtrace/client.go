// Package mindtrace is a client for the /api/ai-analyze endpoints of a
// running MindTrace AI service.
package mindtrace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/futig/mindtrace-ai/internal/integration/common"
	pkghttp "github.com/futig/mindtrace-ai/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	extractDocumentEndpoint = "/api/ai-analyze/extract-document"
	extractAndChunkEndpoint = "/api/ai-analyze/extract-and-chunk"
	processDocumentEndpoint = "/api/ai-analyze/process-document"
	searchEndpoint          = "/api/ai-analyze/search"
	askEndpoint             = "/api/ai-analyze/ask"
	deleteProjectEndpoint   = "/api/ai-analyze/delete-project"
	analyzeChangesEndpoint  = "/api/ai-analyze/analyze-spec-changes"
)

type Client struct {
	config    config.ClientConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewClient(
	cfg config.ClientConfig,
	logger *zap.Logger,
	opts ...pkghttp.HttpOpts,
) *Client {
	return &Client{
		connector: common.NewBaseConnector(strings.TrimRight(cfg.URL, "/"), cfg.HTTPClientConfig, logger, opts...),
		config:    cfg,
		logger:    logger,
	}
}

// ExtractDocument uploads a local file, remote URLs are fetched by the service
func (c *Client) ExtractDocument(ctx context.Context, source string) (*entity.ExtractedDocument, error) {
	if isRemote(source) {
		doc, err := c.ExtractAndChunk(ctx, source)
		if err != nil {
			return nil, err
		}
		return &entity.ExtractedDocument{Markdown: doc.Markdown, JSON: doc.JSON}, nil
	}

	file, err := os.Open(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", entity.ErrSourceNotFound, source)
		}
		return nil, fmt.Errorf("open %s: %w", source, err)
	}
	defer file.Close()

	ctxzap.Info(ctx, "uploading document for extraction", zap.String("source", source))

	prepareBody := func(writer *multipart.Writer) error {
		part, err := writer.CreateFormFile("file", filepath.Base(source))
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return fmt.Errorf("write file content: %w", err)
		}
		return nil
	}

	var resp entity.ExtractedDocument
	if err := c.connector.DoMultipartRequest(ctx, http.MethodPost, extractDocumentEndpoint, prepareBody, &resp); err != nil {
		return nil, c.mapError(ctx, "extract document", err)
	}
	return &resp, nil
}

// ExtractAndChunk extracts and chunks a source. Paths are resolved on the service host.
func (c *Client) ExtractAndChunk(ctx context.Context, source string) (*entity.ChunkedDocument, error) {
	req := entity.ExtractAndChunkRequest{URLOrPath: source}

	var resp entity.ChunkedDocument
	if err := c.connector.DoRequest(ctx, http.MethodPost, extractAndChunkEndpoint, req, &resp); err != nil {
		return nil, c.mapError(ctx, "extract and chunk", err)
	}
	return &resp, nil
}

// Ingest indexes a source for a project. Paths are resolved on the service host.
func (c *Client) Ingest(ctx context.Context, source, projectID string) ([]entity.VectorPoint, error) {
	req := entity.ProcessDocumentRequest{URLOrPath: source, ProjectID: projectID}

	var resp entity.ProcessDocumentResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, processDocumentEndpoint, req, &resp); err != nil {
		return nil, c.mapError(ctx, "process document", err)
	}

	ctxzap.Info(ctx, "document indexed remotely",
		zap.String("project_id", projectID),
		zap.Int("num_chunks", resp.NumChunks),
	)
	return resp.Points, nil
}

func (c *Client) Search(ctx context.Context, query, projectID string, limit int) ([]entity.SearchResult, error) {
	req := entity.SearchRequest{Query: query, ProjectID: projectID, Limit: &limit}

	var resp entity.SearchResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, searchEndpoint, req, &resp); err != nil {
		return nil, c.mapError(ctx, "search", err)
	}
	return resp.Results, nil
}

func (c *Client) Ask(ctx context.Context, question, projectID string, numResults int) (*entity.Answer, error) {
	req := entity.AskRequest{Query: question, ProjectID: projectID, NumResults: &numResults}

	var resp entity.Answer
	if err := c.connector.DoRequest(ctx, http.MethodPost, askEndpoint, req, &resp); err != nil {
		return nil, c.mapError(ctx, "ask", err)
	}
	return &resp, nil
}

func (c *Client) DeleteProject(ctx context.Context, collection, projectID string) error {
	params := url.Values{}
	params.Set("collection", collection)
	params.Set("project_id", projectID)

	var resp entity.DeleteProjectResponse
	if err := c.connector.DoRequest(ctx, http.MethodDelete, deleteProjectEndpoint+"?"+params.Encode(), nil, &resp); err != nil {
		return c.mapError(ctx, "delete project", err)
	}

	ctxzap.Info(ctx, "project deleted remotely", zap.String("message", resp.Message))
	return nil
}

// Analyze requests the JSON report, other formats are rendered by the caller
func (c *Client) Analyze(ctx context.Context, oldDesc, newDesc string) (*entity.ChangeReport, error) {
	req := entity.AnalyzeChangesRequest{OldDesc: oldDesc, NewDesc: newDesc}

	var resp entity.ChangeReport
	if err := c.connector.DoRequest(ctx, http.MethodPost, analyzeChangesEndpoint, req, &resp); err != nil {
		return nil, c.mapError(ctx, "analyze changes", err)
	}
	return &resp, nil
}

// mapError turns the service status codes back into the entity errors the
// service derived them from.
func (c *Client) mapError(ctx context.Context, op string, err error) error {
	var httpErr *pkghttp.HTTPError
	if !errors.As(err, &httpErr) {
		ctxzap.Error(ctx, "mindtrace request failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	message := httpErr.Message
	var body entity.ErrorResponse
	if json.Unmarshal([]byte(httpErr.Message), &body) == nil && body.Message != "" {
		message = body.Message
	}

	ctxzap.Warn(ctx, "mindtrace request rejected",
		zap.String("op", op),
		zap.Int("status", httpErr.StatusCode),
		zap.String("message", message),
	)

	switch httpErr.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", entity.ErrInvalidParameter, message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", entity.ErrSourceNotFound, message)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", entity.ErrExtraction, message)
	case http.StatusBadGateway:
		return fmt.Errorf("%w: %s", entity.ErrCompletion, message)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", entity.ErrSearch, message)
	default:
		return fmt.Errorf("%s: %w", op, httpErr)
	}
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
