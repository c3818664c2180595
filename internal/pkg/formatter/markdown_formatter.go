package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/mindtrace-ai/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(report *entity.ChangeReport) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", baseTitle)

	for _, s := range sections(report) {
		fmt.Fprintf(&buf, "\n## %s\n\n", s.heading)
		for _, b := range s.bullets {
			fmt.Fprintf(&buf, "- %s\n", b)
		}
		if s.body != "" {
			fmt.Fprintf(&buf, "%s\n", s.body)
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
