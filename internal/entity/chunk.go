package entity

// ChunkMeta is the provenance of a chunk inside its source document
type ChunkMeta struct {
	Filename    string   `json:"filename,omitempty"`
	PageNumbers []int    `json:"page_numbers,omitempty"`
	Headings    []string `json:"headings,omitempty"`
}

// Chunk is a bounded-size unit of a document's text
type Chunk struct {
	Index  int       `json:"id"`
	Text   string    `json:"text"`
	Tokens *int      `json:"tokens"`
	Meta   ChunkMeta `json:"-"`
}

// Title returns the outermost heading the chunk belongs to
func (c *Chunk) Title() string {
	if len(c.Meta.Headings) == 0 {
		return ""
	}
	return c.Meta.Headings[0]
}

// ExtractedDocument holds the renderings returned by the extraction endpoints
type ExtractedDocument struct {
	Markdown string    `json:"markdown"`
	JSON     *Document `json:"json"`
}

// ChunkedDocument is an extracted document together with its chunks
type ChunkedDocument struct {
	Markdown string    `json:"markdown"`
	JSON     *Document `json:"json"`
	Chunks   []Chunk   `json:"chunks"`
}
