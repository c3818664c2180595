package chunker

import (
	"testing"

	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordTokenizer(t *testing.T) {
	assert.Equal(t, 0, WordTokenizer{}.Count("   "))
	assert.Equal(t, 3, WordTokenizer{}.Count("one  two\nthree"))
}

func TestNewTokenizer(t *testing.T) {
	tok, err := NewTokenizer(config.ChunkerConfig{Tokenizer: config.TokenizerWords})
	require.NoError(t, err)
	assert.Equal(t, "words", tok.Name())

	_, err = NewTokenizer(config.ChunkerConfig{Tokenizer: "sentencepiece"})
	assert.Error(t, err)

	_, err = NewTokenizer(config.ChunkerConfig{Tokenizer: config.TokenizerTiktoken, TiktokenEncoding: "nope"})
	assert.Error(t, err)
}

func TestTiktokenTokenizer(t *testing.T) {
	tok, err := NewTiktokenTokenizer("cl100k_base")
	require.NoError(t, err)

	assert.Equal(t, "tiktoken/cl100k_base", tok.Name())
	assert.Equal(t, 2, tok.Count("hello world"))
	assert.Equal(t, 0, tok.Count(""))
}

func TestChunk_TiktokenBudget(t *testing.T) {
	tok, err := NewTiktokenTokenizer("cl100k_base")
	require.NoError(t, err)

	doc := entity.NewDocument("notes.txt", entity.Origin{Filename: "notes.txt"})
	doc.Add(entity.Item{
		Kind: entity.ItemKindParagraph,
		Text: "Les utilisateurs doivent pouvoir se connecter avec leur compte d'entreprise. " +
			"The authentication service issues short-lived tokens and refresh tokens. " +
			"Supercalifragilisticexpialidocious identifiers are rejected by the validator.",
	})

	chunks, err := New(WithTokenizer(tok)).Chunk(doc, 8)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, tok.Count(c.Text), 8, c.Text)
	}
}

func TestChunk_TiktokenBudgetBelowOneCharacter(t *testing.T) {
	tok, err := NewTiktokenTokenizer("cl100k_base")
	require.NoError(t, err)

	doc := entity.NewDocument("notes.txt", entity.Origin{Filename: "notes.txt"})
	doc.Add(entity.Item{Kind: entity.ItemKindParagraph, Text: "日本語のテキスト 🧑‍💻🧑‍💻 données"})

	chunker := New(WithTokenizer(tok))

	// 🧑 encodes to several tokens on its own.
	_, err = chunker.Chunk(doc, 1)
	assert.ErrorIs(t, err, entity.ErrChunking)
	assert.ErrorContains(t, err, "smaller than a single character")

	// A UTF-8 rune is at most four byte-level tokens.
	chunks, err := chunker.Chunk(doc, 4)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.LessOrEqual(t, tok.Count(c.Text), 4, c.Text)
	}
}
