package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/futig/mindtrace-ai/internal/pkg/formatter"
	"github.com/futig/mindtrace-ai/internal/pkg/logger"
	"github.com/futig/mindtrace-ai/internal/pkg/response"
	"github.com/futig/mindtrace-ai/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// multipart parts above this size spill to disk
const multipartMemory = 8 << 20

type Handler struct {
	documents DocumentUsecase
	retrieval RetrievalUsecase
	changes   ChangesUsecase
	validator *validator.Validator
	formats   *formatter.Factory
}

func NewHandler(
	documents DocumentUsecase,
	retrieval RetrievalUsecase,
	changes ChangesUsecase,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		documents: documents,
		retrieval: retrieval,
		changes:   changes,
		validator: validator,
		formats:   formatter.NewFactory(),
	}
}

// ExtractDocument handles POST /api/ai-analyze/extract-document - Extract an uploaded file
func (h *Handler) ExtractDocument(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ExtractDocument")

	r.Body = http.MaxBytesReader(w, r.Body, h.validator.MaxUploadSize())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.handleUsecaseError(ctx, w, fmt.Errorf("%w: request body exceeds %d bytes", entity.ErrFileTooLarge, maxErr.Limit))
			return
		}
		h.respondError(ctx, w, http.StatusBadRequest, "invalid multipart form", err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "file is required", err)
		return
	}
	defer file.Close()

	if err := h.validator.ValidateUpload(header); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("filename", header.Filename), zap.Int64("size", header.Size))
	ctxzap.Info(ctx, "extracting uploaded document")

	result, err := h.documents.ExtractUpload(ctx, header.Filename, file)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// ExtractAndChunk handles POST /api/ai-analyze/extract-and-chunk
func (h *Handler) ExtractAndChunk(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ExtractAndChunk")

	var req entity.ExtractAndChunkRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	ctx = logger.AddFields(ctx, zap.String("url_or_path", req.URLOrPath))

	result, err := h.documents.ExtractAndChunk(ctx, req.URLOrPath)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// ProcessDocument handles POST /api/ai-analyze/process-document - Ingest a document into a project
func (h *Handler) ProcessDocument(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ProcessDocument")

	var req entity.ProcessDocumentRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	ctx = logger.AddFields(ctx,
		zap.String("url_or_path", req.URLOrPath),
		zap.String("project_id", req.ProjectID),
	)

	points, err := h.documents.Ingest(ctx, req.URLOrPath, req.ProjectID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, entity.ProcessDocumentResponse{
		ProjectID: req.ProjectID,
		NumChunks: len(points),
		Points:    points,
	})
}

// Search handles POST /api/ai-analyze/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Search")

	var req entity.SearchRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}
	limit := req.Normalize()

	results, err := h.retrieval.Search(ctx, req.Query, req.ProjectID, limit)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, entity.SearchResponse{
		Query:      req.Query,
		ProjectID:  req.ProjectID,
		NumResults: len(results),
		Results:    results,
	})
}

// Ask handles POST /api/ai-analyze/ask
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ask")

	var req entity.AskRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}
	numResults := req.Normalize()

	answer, err := h.retrieval.Ask(ctx, req.Query, req.ProjectID, numResults)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, answer)
}

// DeleteProject handles DELETE /api/ai-analyze/delete-project?collection=&project_id=
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "DeleteProject")

	collection := r.URL.Query().Get("collection")
	projectID := r.URL.Query().Get("project_id")

	if err := h.documents.DeleteProject(ctx, collection, projectID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, entity.DeleteProjectResponse{
		Status:  "ok",
		Message: fmt.Sprintf("Vecteurs avec project_id=%s supprimés de '%s'", projectID, collection),
	})
}

// AnalyzeSpecChanges handles POST /api/ai-analyze/analyze-spec-changes[?format=markdown|docx|pdf]
func (h *Handler) AnalyzeSpecChanges(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AnalyzeSpecChanges")

	format := entity.ReportFormatJSON
	if formatParam := r.URL.Query().Get("format"); formatParam != "" {
		format = entity.ReportFormat(formatParam)
		if !format.IsValid() {
			h.respondError(ctx, w, http.StatusBadRequest, "invalid format parameter",
				fmt.Errorf("format must be one of: json, markdown, docx, pdf"))
			return
		}
	}

	var req entity.AnalyzeChangesRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	report, err := h.changes.Analyze(ctx, req.OldDesc, req.NewDesc)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if format == entity.ReportFormatJSON {
		h.respondJSON(w, http.StatusOK, report)
		return
	}

	fmtr, err := h.formats.Create(format)
	if err != nil {
		h.respondError(ctx, w, http.StatusNotImplemented, "format not implemented", err)
		return
	}

	data, err := fmtr.Format(report)
	if err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to format report", err)
		return
	}

	filename := fmt.Sprintf("spec-changes-%s%s", time.Now().UTC().Format("20060102-150405"), fmtr.FileExtension())
	response.Attachment(w, fmtr.ContentType(), filename, data)
}

func (h *Handler) decode(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	response.JSON(w, status, data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}
	response.Error(w, status, fmt.Sprintf("%s: %v", message, err))
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrMissingField) || errors.Is(err, entity.ErrInvalidParameter):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, entity.ErrInvalidFile) || errors.Is(err, entity.ErrInvalidExtension) || errors.Is(err, entity.ErrFileTooLarge):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid file", err)
	case errors.Is(err, entity.ErrSourceNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "source not found", err)
	case errors.Is(err, entity.ErrExtraction) || errors.Is(err, entity.ErrUnsupportedFormat) || errors.Is(err, entity.ErrChunking):
		h.respondError(ctx, w, http.StatusUnprocessableEntity, "document could not be processed", err)
	case errors.Is(err, entity.ErrEmbedding) || errors.Is(err, entity.ErrCompletion):
		h.respondError(ctx, w, http.StatusBadGateway, "model provider error", err)
	case errors.Is(err, entity.ErrSearch) || errors.Is(err, entity.ErrStoreWrite):
		h.respondError(ctx, w, http.StatusServiceUnavailable, "vector store error", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
