package api

import (
	"bytes"
	"context"
	"errors"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	analyzeapi "github.com/futig/mindtrace-ai/internal/api/analyze"
	"github.com/futig/mindtrace-ai/internal/chunker"
	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/futig/mindtrace-ai/internal/extractor"
	"github.com/futig/mindtrace-ai/internal/integration/openai"
	"github.com/futig/mindtrace-ai/internal/pkg/metrics"
	"github.com/futig/mindtrace-ai/internal/pkg/validator"
	"github.com/futig/mindtrace-ai/internal/usecase/changes"
	"github.com/futig/mindtrace-ai/internal/usecase/document"
	"github.com/futig/mindtrace-ai/internal/usecase/retrieval"
	"github.com/futig/mindtrace-ai/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type unreachableStore struct {
	*vectorstore.Memory
}

func (unreachableStore) Health(context.Context) error {
	return errors.New("dial tcp 127.0.0.1:5432: connection refused")
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWithReadiness(t, nil)
}

// newTestServerWithReadiness uses checker for /health/ready when it is not nil.
func newTestServerWithReadiness(t *testing.T, checker HealthChecker) *httptest.Server {
	t.Helper()

	logger := zap.NewNop()
	mock := openai.NewMockConnector(logger)
	store := vectorstore.NewMemory()
	m := metrics.New()

	documents := document.NewUsecase(
		extractor.NewExtractor(config.ExtractorConfig{MaxRemoteSize: 1 << 20}, logger),
		chunker.New(),
		mock,
		store,
		m,
		config.ChunkerConfig{MaxTokens: 100},
		config.IngestConfig{EmbedConcurrency: 2},
		logger,
	)
	handler := analyzeapi.NewHandler(
		documents,
		retrieval.NewUsecase(mock, mock, store, logger),
		changes.NewUsecase(mock, logger),
		validator.NewFileValidator(config.FileUploadConfig{MaxFileSize: 1 << 20, MaxUploadSize: 2 << 20}),
	)

	if checker == nil {
		checker = store
	}

	srv := httptest.NewServer(SetupRouter(handler, checker, m, 10*time.Second, logger))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[entity.HealthResponse](t, resp)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "MindTrace AI Service", body.Service)
}

func TestReadiness(t *testing.T) {
	t.Run("store reachable", func(t *testing.T) {
		srv := newTestServer(t)

		resp, err := http.Get(srv.URL + "/health/ready")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[entity.HealthResponse](t, resp)
		assert.Equal(t, "ready", body.Status)
		assert.Equal(t, "MindTrace AI Service", body.Service)
	})

	t.Run("store unreachable", func(t *testing.T) {
		srv := newTestServerWithReadiness(t, unreachableStore{vectorstore.NewMemory()})

		resp, err := http.Get(srv.URL + "/health/ready")
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		body := decodeBody[entity.ErrorResponse](t, resp)
		assert.Equal(t, "Service Unavailable", body.Error)
		assert.Contains(t, body.Message, "vector store unavailable")
		assert.Contains(t, body.Message, "connection refused")

		// Liveness does not depend on the store.
		live, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		live.Body.Close()
		assert.Equal(t, http.StatusOK, live.StatusCode)
	})
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t)

	t.Run("preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/ai-analyze/ask", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Less(t, resp.StatusCode, 300)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.Equal(t, "300", resp.Header.Get("Access-Control-Max-Age"))
	})

	t.Run("simple request", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://app.example.com")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})
}

func TestDocumentLifecycle(t *testing.T) {
	srv := newTestServer(t)

	path := filepath.Join(t.TempDir(), "accounts.txt")
	require.NoError(t, os.WriteFile(path, []byte(
		"Users log in with email and password.\n\n"+
			"Password reset is sent by email.\n\n"+
			"Invoices are generated monthly.\n"), 0o600))

	resp := postJSON(t, srv.URL+"/api/ai-analyze/process-document", entity.ProcessDocumentRequest{
		URLOrPath: path,
		ProjectID: "p1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	processed := decodeBody[entity.ProcessDocumentResponse](t, resp)
	assert.Equal(t, "p1", processed.ProjectID)
	assert.Equal(t, 3, processed.NumChunks)
	require.Len(t, processed.Points, 3)
	assert.Len(t, processed.Points[0].Vector, entity.VectorSize)

	limit := 2
	resp = postJSON(t, srv.URL+"/api/ai-analyze/search", entity.SearchRequest{
		Query:     "email password",
		ProjectID: "p1",
		Limit:     &limit,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := decodeBody[entity.SearchResponse](t, resp)
	assert.Equal(t, 2, found.NumResults)
	for _, r := range found.Results {
		assert.Equal(t, "p1", r.ProjectID)
	}
	assert.GreaterOrEqual(t, found.Results[0].Score, found.Results[1].Score)

	resp = postJSON(t, srv.URL+"/api/ai-analyze/ask", entity.AskRequest{
		Query:     "How is the password reset?",
		ProjectID: "p1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	answer := decodeBody[entity.Answer](t, resp)
	assert.Equal(t, "[MOCK] Based on the provided documents: How is the password reset?", answer.Answer)
	assert.Len(t, answer.Contexts, 3)

	q := url.Values{"collection": {entity.DefaultCollection}, "project_id": {"p1"}}
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/ai-analyze/delete-project?"+q.Encode(), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	deleted := decodeBody[entity.DeleteProjectResponse](t, resp)
	assert.Equal(t, "ok", deleted.Status)

	resp = postJSON(t, srv.URL+"/api/ai-analyze/search", entity.SearchRequest{Query: "email", ProjectID: "p1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, decodeBody[entity.SearchResponse](t, resp).NumResults)
}

func TestErrorResponses(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"missing project", "/api/ai-analyze/process-document", entity.ProcessDocumentRequest{URLOrPath: "a.txt"}, http.StatusBadRequest},
		{"missing source", "/api/ai-analyze/extract-and-chunk", entity.ExtractAndChunkRequest{URLOrPath: filepath.Join(t.TempDir(), "nope.pdf")}, http.StatusNotFound},
		{"search limit", "/api/ai-analyze/search", map[string]any{"query": "x", "project_id": "p1", "limit": 0}, http.StatusBadRequest},
		{"ask without query", "/api/ai-analyze/ask", map[string]any{"project_id": "p1"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decodeBody[entity.ErrorResponse](t, resp)
			assert.Equal(t, http.StatusText(tt.status), body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}

	resp, err := http.Post(srv.URL+"/api/ai-analyze/search", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func uploadFile(t *testing.T, url, filename, content string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func TestExtractDocument(t *testing.T) {
	srv := newTestServer(t)

	resp := uploadFile(t, srv.URL+"/api/ai-analyze/extract-document", "notes.md", "# Notes\n\nShip it on Friday.\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := decodeBody[entity.ExtractedDocument](t, resp)
	assert.Equal(t, "# Notes\n\nShip it on Friday.", doc.Markdown)
	require.NotNil(t, doc.JSON)
	assert.Equal(t, "notes.md", doc.JSON.Origin.Filename)

	resp = uploadFile(t, srv.URL+"/api/ai-analyze/extract-document", "tool.exe", "MZ")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Post(srv.URL+"/api/ai-analyze/extract-document", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAnalyzeSpecChanges(t *testing.T) {
	srv := newTestServer(t)
	req := entity.AnalyzeChangesRequest{OldDesc: "Email login.", NewDesc: "Email and Google login."}

	resp := postJSON(t, srv.URL+"/api/ai-analyze/analyze-spec-changes", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "Email login.", report["old_description"])
	assert.Equal(t, "Email and Google login.", report["new_description"])
	assert.NotEmpty(t, report["summary_changes"])

	resp = postJSON(t, srv.URL+"/api/ai-analyze/analyze-spec-changes?format=markdown", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/markdown; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".md")
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(data), "## New description\n\nEmail and Google login.")

	resp = postJSON(t, srv.URL+"/api/ai-analyze/analyze-spec-changes?format=pdf", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/ai-analyze/analyze-spec-changes?format=odt", req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestMetricsAndDocs(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(data), `mindtrace_http_requests_total{method="GET",route="/health",status="200"} 1`)

	resp, err = http.Get(srv.URL + "/docs/swagger.yaml")
	require.NoError(t, err)
	data, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "title: MindTrace AI Service")
}
