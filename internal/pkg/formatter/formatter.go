package formatter

import (
	"fmt"

	"github.com/futig/mindtrace-ai/internal/entity"
)

const baseTitle = "Requirement changes"

type Formatter interface {
	Format(report *entity.ChangeReport) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ReportFormat) (Formatter, error) {
	switch format {
	case entity.ReportFormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.ReportFormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.ReportFormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// section is a headed block of the rendered report
type section struct {
	heading string
	// bullets render as a list, body as plain paragraphs
	bullets []string
	body    string
}

// sections lays out a report in the order every format renders it
func sections(report *entity.ChangeReport) []section {
	var out []section

	if report.IsRaw() {
		out = append(out, section{heading: "Analysis", body: report.RawText})
	} else {
		out = append(out, section{heading: "Summary", body: report.SummaryChanges})

		bullets := make([]string, len(report.ChangesDetails))
		for i, d := range report.ChangesDetails {
			bullets[i] = fmt.Sprintf("%s: %s", d.Type, d.Description)
		}
		out = append(out, section{heading: "Changes", bullets: bullets})

		if report.Recommendations != "" {
			out = append(out, section{heading: "Recommendations", body: report.Recommendations})
		}
	}

	return append(out,
		section{heading: "Old description", body: report.OldDescription},
		section{heading: "New description", body: report.NewDescription},
	)
}
