package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/futig/mindtrace-ai/internal/entity"
)

func parseText(doc *entity.Document, data []byte) error {
	if !utf8.Valid(data) {
		data = []byte(strings.ToValidUTF8(string(data), "�"))
	}

	for _, para := range splitParagraphs(string(data)) {
		doc.Add(entity.Item{Kind: entity.ItemKindParagraph, Text: para})
	}
	return nil
}

// splitParagraphs splits on blank lines and folds the lines of each
// paragraph into one line
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var (
		out   []string
		lines []string
	)
	flush := func() {
		if len(lines) > 0 {
			out = append(out, strings.Join(lines, " "))
			lines = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	flush()

	return out
}
