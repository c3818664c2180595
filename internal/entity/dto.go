package entity

import "strings"

const (
	DefaultSearchLimit  = 3
	DefaultNumResults   = 5
	MaxResultsPerSearch = 100
)

type ExtractAndChunkRequest struct {
	URLOrPath string `json:"url_or_path"`
}

type ProcessDocumentRequest struct {
	URLOrPath string `json:"url_or_path"`
	ProjectID string `json:"project_id"`
}

type ProcessDocumentResponse struct {
	ProjectID string        `json:"project_id"`
	NumChunks int           `json:"num_chunks"`
	Points    []VectorPoint `json:"points"`
}

type SearchRequest struct {
	Query     string `json:"query"`
	ProjectID string `json:"project_id"`
	Limit     *int   `json:"limit,omitempty"`
}

// Normalize applies the default limit when none was sent
func (r *SearchRequest) Normalize() int {
	r.Query = strings.TrimSpace(r.Query)
	r.ProjectID = strings.TrimSpace(r.ProjectID)
	if r.Limit == nil {
		return DefaultSearchLimit
	}
	return *r.Limit
}

type SearchResponse struct {
	Query      string         `json:"query"`
	ProjectID  string         `json:"project_id"`
	NumResults int            `json:"num_results"`
	Results    []SearchResult `json:"results"`
}

type AskRequest struct {
	Query      string `json:"query"`
	ProjectID  string `json:"project_id"`
	NumResults *int   `json:"num_results,omitempty"`
}

// Normalize applies the default number of contexts when none was sent
func (r *AskRequest) Normalize() int {
	r.Query = strings.TrimSpace(r.Query)
	r.ProjectID = strings.TrimSpace(r.ProjectID)
	if r.NumResults == nil {
		return DefaultNumResults
	}
	return *r.NumResults
}

type DeleteProjectResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type AnalyzeChangesRequest struct {
	OldDesc string `json:"old_desc"`
	NewDesc string `json:"new_desc"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
