package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDoc(items ...entity.Item) *entity.Document {
	doc := entity.NewDocument("spec.pdf", entity.Origin{Filename: "spec.pdf", MimeType: "application/pdf"})
	for _, item := range items {
		doc.Add(item)
	}
	return doc
}

func words(n int, prefix string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return strings.Join(parts, " ")
}

func TestChunk_StructuralUnits(t *testing.T) {
	doc := newDoc(
		entity.Item{Kind: entity.ItemKindTitle, Text: "Project Alpha", Page: 1},
		entity.Item{Kind: entity.ItemKindParagraph, Text: "Intro paragraph.", Page: 1},
		entity.Item{Kind: entity.ItemKindSectionHeader, Text: "Requirements", Level: 1, Page: 1},
		entity.Item{Kind: entity.ItemKindListItem, Text: "login", Level: 1, Page: 1, ListID: 1},
		entity.Item{Kind: entity.ItemKindListItem, Text: "logout", Level: 1, Page: 2, ListID: 1},
		entity.Item{Kind: entity.ItemKindParagraph, Text: "Closing words.", Page: 2},
	)

	chunks, err := New().Chunk(doc, 50)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "Intro paragraph.", chunks[0].Text)
	assert.Equal(t, []string{"Project Alpha"}, chunks[0].Meta.Headings)
	assert.Equal(t, "Project Alpha", chunks[0].Title())

	assert.Equal(t, "- login\n- logout", chunks[1].Text)
	assert.Equal(t, []int{1, 2}, chunks[1].Meta.PageNumbers)
	assert.Equal(t, []string{"Project Alpha", "Requirements"}, chunks[1].Meta.Headings)

	assert.Equal(t, "Closing words.", chunks[2].Text)
	assert.Equal(t, []int{2}, chunks[2].Meta.PageNumbers)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		require.NotNil(t, c.Tokens)
		assert.Equal(t, "spec.pdf", c.Meta.Filename)
	}
}

func TestChunk_NoMergingOfSmallUnits(t *testing.T) {
	doc := newDoc(
		entity.Item{Kind: entity.ItemKindParagraph, Text: "one"},
		entity.Item{Kind: entity.ItemKindParagraph, Text: "two"},
		entity.Item{Kind: entity.ItemKindParagraph, Text: "three"},
	)

	chunks, err := New().Chunk(doc, 500)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "two", chunks[1].Text)
}

func TestChunk_HeadingWithoutContent(t *testing.T) {
	doc := newDoc(
		entity.Item{Kind: entity.ItemKindSectionHeader, Text: "Empty section", Level: 1},
		entity.Item{Kind: entity.ItemKindSectionHeader, Text: "Filled section", Level: 1},
		entity.Item{Kind: entity.ItemKindParagraph, Text: "Body."},
		entity.Item{Kind: entity.ItemKindSectionHeader, Text: "Trailing", Level: 1},
	)

	chunks, err := New().Chunk(doc, 10)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "Empty section", chunks[0].Text)
	assert.Equal(t, "Body.", chunks[1].Text)
	assert.Equal(t, []string{"Filled section"}, chunks[1].Meta.Headings)
	assert.Equal(t, "Trailing", chunks[2].Text)
}

func TestChunk_NestedHeadingsPop(t *testing.T) {
	doc := newDoc(
		entity.Item{Kind: entity.ItemKindSectionHeader, Text: "A", Level: 1},
		entity.Item{Kind: entity.ItemKindSectionHeader, Text: "A.1", Level: 2},
		entity.Item{Kind: entity.ItemKindParagraph, Text: "deep"},
		entity.Item{Kind: entity.ItemKindSectionHeader, Text: "B", Level: 1},
		entity.Item{Kind: entity.ItemKindParagraph, Text: "shallow"},
	)

	chunks, err := New().Chunk(doc, 10)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, []string{"A", "A.1"}, chunks[0].Meta.Headings)
	assert.Equal(t, []string{"B"}, chunks[1].Meta.Headings)
}

func TestChunk_OversizeUnitsRespectBudget(t *testing.T) {
	sentences := []string{
		words(8, "a") + ".",
		words(8, "b") + ".",
		words(30, "c") + ".",
		words(3, "d") + "!",
	}
	doc := newDoc(
		entity.Item{Kind: entity.ItemKindParagraph, Text: strings.Join(sentences, " "), Page: 4},
		entity.Item{Kind: entity.ItemKindCode, Text: strings.Repeat("x", 40)},
	)

	for _, maxTokens := range []int{1, 2, 5, 10, 17, 100} {
		chunks, err := New().Chunk(doc, maxTokens)
		require.NoError(t, err)

		var rebuilt []string
		for _, c := range chunks {
			assert.LessOrEqual(t, *c.Tokens, maxTokens, "max=%d chunk=%q", maxTokens, c.Text)
			assert.Equal(t, WordTokenizer{}.Count(c.Text), *c.Tokens)
			rebuilt = append(rebuilt, strings.Fields(c.Text)...)
		}

		// no words are lost or reordered
		var original []string
		for _, item := range doc.Items {
			original = append(original, strings.Fields(item.Text)...)
		}
		assert.Equal(t, original, rebuilt, "max=%d", maxTokens)
	}
}

func TestChunk_SentenceBoundariesPreferred(t *testing.T) {
	text := "First sentence has five words. Second sentence has five words. Third one."
	doc := newDoc(entity.Item{Kind: entity.ItemKindParagraph, Text: text})

	chunks, err := New().Chunk(doc, 10)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "First sentence has five words. Second sentence has five words.", chunks[0].Text)
	assert.Equal(t, "Third one.", chunks[1].Text)
}

type runeTokenizer struct{}

func (runeTokenizer) Count(text string) int { return len([]rune(text)) }
func (runeTokenizer) Name() string          { return "runes" }

func TestChunk_RuneLevelSplit(t *testing.T) {
	doc := newDoc(entity.Item{Kind: entity.ItemKindParagraph, Text: "abcdefghij"})

	chunks, err := New(WithTokenizer(runeTokenizer{})).Chunk(doc, 4)
	require.NoError(t, err)

	var texts []string
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, texts)
}

func TestChunk_Errors(t *testing.T) {
	doc := newDoc(entity.Item{Kind: entity.ItemKindParagraph, Text: "text"})

	_, err := New().Chunk(doc, 0)
	assert.ErrorIs(t, err, entity.ErrChunking)

	_, err = New().Chunk(doc, -5)
	assert.ErrorIs(t, err, entity.ErrChunking)

	_, err = New().Chunk(newDoc(), 100)
	assert.ErrorIs(t, err, entity.ErrChunking)
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Hello there. How are you?\nFine!Version 1.2 is out")
	assert.Equal(t, []string{"Hello there.", "How are you?", "Fine!Version 1.2 is out"}, got)
}
