package extractor

import (
	"bytes"
	"fmt"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/ledongthuc/pdf"
)

func parsePDF(doc *entity.Document, data []byte) (err error) {
	// the pdf reader panics on some malformed cross reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}

	fonts := make(map[string]*pdf.Font)
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}

		text, err := page.GetPlainText(fonts)
		if err != nil {
			return fmt.Errorf("read page %d: %w", pageNum, err)
		}

		for _, para := range splitParagraphs(text) {
			doc.Add(entity.Item{Kind: entity.ItemKindParagraph, Text: para, Page: pageNum})
		}
		if pageNum > doc.Pages {
			doc.Pages = pageNum
		}
	}

	return nil
}
