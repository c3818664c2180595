// Package chunker splits extracted documents into token-bounded chunks that
// follow the document structure.
package chunker

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/futig/mindtrace-ai/internal/entity"
)

// DefaultMaxTokens is the chunk budget used when none is configured
const DefaultMaxTokens = 500

// Chunker turns a document into chunks of at most maxTokens tokens.
// Adjacent small units are never merged.
type Chunker struct {
	tokenizer Tokenizer
}

// Option configures the chunker.
type Option func(*Chunker)

// WithTokenizer sets the tokenizer used to measure chunks.
func WithTokenizer(t Tokenizer) Option {
	return func(c *Chunker) {
		if t != nil {
			c.tokenizer = t
		}
	}
}

// New creates a chunker. Without options it counts whitespace separated words.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		tokenizer: WordTokenizer{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// unit is a structural piece of the document before size enforcement
type unit struct {
	text     string
	pages    []int
	headings []string
}

type heading struct {
	level int
	text  string
}

// Chunk splits doc into chunks in reading order.
func (c *Chunker) Chunk(doc *entity.Document, maxTokens int) ([]entity.Chunk, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("%w: max tokens must be positive, got %d", entity.ErrChunking, maxTokens)
	}
	if doc.IsEmpty() {
		return nil, fmt.Errorf("%w: document has no text", entity.ErrChunking)
	}

	units := structuralUnits(doc.Items)

	chunks := make([]entity.Chunk, 0, len(units))
	for _, u := range units {
		pieces, err := c.fit(u.text, maxTokens, 0)
		if err != nil {
			return nil, err
		}
		for _, piece := range pieces {
			tokens := c.tokenizer.Count(piece)
			chunks = append(chunks, entity.Chunk{
				Index:  len(chunks),
				Text:   piece,
				Tokens: &tokens,
				Meta: entity.ChunkMeta{
					Filename:    doc.Origin.Filename,
					PageNumbers: u.pages,
					Headings:    u.headings,
				},
			})
		}
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document produced no chunks", entity.ErrChunking)
	}

	return chunks, nil
}

func structuralUnits(items []entity.Item) []unit {
	var (
		units   []unit
		path    []heading
		pending *entity.Item
	)

	headingTexts := func() []string {
		if len(path) == 0 {
			return nil
		}
		out := make([]string, len(path))
		for i, h := range path {
			out[i] = h.text
		}
		return out
	}

	flushPending := func() {
		if pending != nil {
			units = append(units, unit{
				text:     pending.Text,
				pages:    pageList(pending.Page),
				headings: headingTexts(),
			})
			pending = nil
		}
	}

	for i := 0; i < len(items); i++ {
		item := items[i]

		if item.Kind.IsHeading() {
			// a heading directly followed by another heading has no body of its own
			flushPending()

			level := 0
			if item.Kind == entity.ItemKindSectionHeader {
				level = max(item.Level, 1)
			}
			for len(path) > 0 && path[len(path)-1].level >= level {
				path = path[:len(path)-1]
			}
			path = append(path, heading{level: level, text: item.Text})
			pending = &items[i]
			continue
		}

		pending = nil

		if item.Kind == entity.ItemKindListItem {
			texts := []string{listLine(item)}
			pages := pageList(item.Page)
			for i+1 < len(items) && items[i+1].Kind == entity.ItemKindListItem && items[i+1].ListID == item.ListID {
				i++
				texts = append(texts, listLine(items[i]))
				pages = addPage(pages, items[i].Page)
			}
			units = append(units, unit{
				text:     strings.Join(texts, "\n"),
				pages:    pages,
				headings: headingTexts(),
			})
			continue
		}

		units = append(units, unit{
			text:     item.Text,
			pages:    pageList(item.Page),
			headings: headingTexts(),
		})
	}

	flushPending()

	return units
}

func listLine(item entity.Item) string {
	return strings.Repeat("  ", max(item.Level-1, 0)) + "- " + item.Text
}

func pageList(page int) []int {
	if page <= 0 {
		return nil
	}
	return []int{page}
}

func addPage(pages []int, page int) []int {
	if page <= 0 || slices.Contains(pages, page) {
		return pages
	}
	pages = append(pages, page)
	slices.Sort(pages)
	return pages
}

type splitter struct {
	split func(string) []string
	sep   string
}

// sentence, then word, then rune boundaries
var splitters = []splitter{
	{split: splitSentences, sep: " "},
	{split: strings.Fields, sep: " "},
	{split: splitRunes, sep: ""},
}

// fit returns pieces of text that each measure at most maxTokens, packing
// consecutive pieces greedily at the finest level that was needed.
func (c *Chunker) fit(text string, maxTokens, level int) ([]string, error) {
	if c.tokenizer.Count(text) <= maxTokens {
		return []string{text}, nil
	}

	for ; level < len(splitters); level++ {
		s := splitters[level]
		parts := s.split(text)
		if len(parts) < 2 {
			continue
		}

		var out []string
		current := ""
		for _, part := range parts {
			if c.tokenizer.Count(part) > maxTokens {
				if current != "" {
					out = append(out, current)
					current = ""
				}
				pieces, err := c.fit(part, maxTokens, level+1)
				if err != nil {
					return nil, err
				}
				out = append(out, pieces...)
				continue
			}

			if current == "" {
				current = part
				continue
			}

			candidate := current + s.sep + part
			if c.tokenizer.Count(candidate) <= maxTokens {
				current = candidate
			} else {
				out = append(out, current)
				current = part
			}
		}
		if current != "" {
			out = append(out, current)
		}

		return out, nil
	}

	// a single rune that still exceeds the budget cannot be split further
	return nil, fmt.Errorf("%w: budget of %d tokens is smaller than a single character (%q takes %d)",
		entity.ErrChunking, maxTokens, text, c.tokenizer.Count(text))
}

// splitSentences splits after sentence terminators and at line breaks
func splitSentences(text string) []string {
	var (
		out   []string
		start int
	)

	runes := []rune(text)
	for i, r := range runes {
		boundary := false
		switch {
		case r == '\n':
			boundary = true
		case r == '.' || r == '!' || r == '?' || r == ';':
			boundary = i+1 < len(runes) && unicode.IsSpace(runes[i+1])
		}

		if boundary {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}

	return out
}

func splitRunes(text string) []string {
	out := make([]string, 0, len(text))
	for _, r := range text {
		out = append(out, string(r))
	}
	return out
}
