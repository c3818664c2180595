package entity

const (
	// DefaultCollection is the vector store collection used for every project
	DefaultCollection = "MindTrace-documents"
	// VectorSize is the output dimension of the embedding model
	VectorSize = 1536
	// DistanceCosine is the only similarity metric used by the service
	DistanceCosine = "Cosine"
)

// Payload is the metadata stored next to every vector
type Payload struct {
	ProjectID   string  `json:"project_id"`
	Text        string  `json:"text"`
	Filename    *string `json:"filename"`
	PageNumbers []int   `json:"page_numbers"`
	Title       *string `json:"title"`
}

// VectorPoint is a persisted record of the vector store
type VectorPoint struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload Payload   `json:"payload"`
}

// VectorQuery is a nearest-neighbour query scoped to one project
type VectorQuery struct {
	Vector    []float32
	ProjectID string
	Limit     int
}

// SearchResult is a scored projection of a vector point
type SearchResult struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"project_id"`
	Text        string  `json:"text"`
	Filename    *string `json:"filename"`
	PageNumbers []int   `json:"page_numbers"`
	Title       *string `json:"title"`
	Score       float32 `json:"score"`
}

// ResultFromPayload builds a search result from a stored payload
func ResultFromPayload(id string, p Payload, score float32) SearchResult {
	return SearchResult{
		ID:          id,
		ProjectID:   p.ProjectID,
		Text:        p.Text,
		Filename:    p.Filename,
		PageNumbers: p.PageNumbers,
		Title:       p.Title,
		Score:       score,
	}
}

// StringPtr returns nil for an empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
