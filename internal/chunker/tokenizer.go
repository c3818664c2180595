package chunker

import (
	"fmt"
	"strings"
	"sync"

	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Tokenizer measures text in model tokens
type Tokenizer interface {
	Count(text string) int
	Name() string
}

var loaderOnce sync.Once

// TiktokenTokenizer counts BPE tokens. Vocabularies are embedded in the
// binary, so no network access is needed at startup.
type TiktokenTokenizer struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

func NewTiktokenTokenizer(encoding string) (*TiktokenTokenizer, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encoding, err)
	}

	return &TiktokenTokenizer{encoding: encoding, enc: enc}, nil
}

func (t *TiktokenTokenizer) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

func (t *TiktokenTokenizer) Name() string {
	return "tiktoken/" + t.encoding
}

// WordTokenizer counts whitespace separated words
type WordTokenizer struct{}

func (WordTokenizer) Count(text string) int {
	return len(strings.Fields(text))
}

func (WordTokenizer) Name() string {
	return "words"
}

// NewTokenizer builds the tokenizer selected by configuration
func NewTokenizer(cfg config.ChunkerConfig) (Tokenizer, error) {
	switch cfg.Tokenizer {
	case config.TokenizerTiktoken:
		return NewTiktokenTokenizer(cfg.TiktokenEncoding)
	case config.TokenizerWords:
		return WordTokenizer{}, nil
	default:
		return nil, fmt.Errorf("unknown tokenizer %q", cfg.Tokenizer)
	}
}
