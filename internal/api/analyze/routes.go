package analyze

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the document and retrieval routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/ai-analyze", func(r chi.Router) {
		r.Post("/extract-document", h.ExtractDocument)
		r.Post("/extract-and-chunk", h.ExtractAndChunk)
		r.Post("/process-document", h.ProcessDocument)
		r.Post("/search", h.Search)
		r.Post("/ask", h.Ask)
		r.Delete("/delete-project", h.DeleteProject)
		r.Post("/analyze-spec-changes", h.AnalyzeSpecChanges)
	})
}
