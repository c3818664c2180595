package extractor

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/schema/soo/wml"
)

func parseDOCX(doc *entity.Document, data []byte) error {
	d, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open docx: %w", err)
	}
	defer d.Close()

	// paragraphs inside tables are reported by Paragraphs() as well
	inTable := make(map[*wml.CT_P]struct{})
	var tables []string
	for _, t := range d.Tables() {
		var rows []string
		for _, row := range t.Rows() {
			var cells []string
			for _, cell := range row.Cells() {
				var parts []string
				for _, p := range cell.Paragraphs() {
					inTable[p.X()] = struct{}{}
					if text := paragraphText(p); text != "" {
						parts = append(parts, text)
					}
				}
				cells = append(cells, strings.Join(parts, " "))
			}
			rows = append(rows, "| "+strings.Join(cells, " | ")+" |")
		}
		tables = append(tables, strings.Join(rows, "\n"))
	}

	listID := 0
	inList := false
	for _, p := range d.Paragraphs() {
		if _, ok := inTable[p.X()]; ok {
			continue
		}

		text := paragraphText(p)
		if text == "" {
			continue
		}

		kind, level := classifyStyle(p.Style())
		if kind == entity.ItemKindListItem {
			if !inList {
				listID++
				inList = true
			}
		} else {
			inList = false
		}

		doc.Add(entity.Item{Kind: kind, Text: text, Level: level, ListID: listID})
	}

	for _, t := range tables {
		doc.Add(entity.Item{Kind: entity.ItemKindTable, Text: t})
	}

	return nil
}

func paragraphText(p document.Paragraph) string {
	var b strings.Builder
	for _, r := range p.Runs() {
		b.WriteString(r.Text())
	}
	return strings.TrimSpace(b.String())
}

// classifyStyle maps Word style ids such as "Heading2" or "ListBullet"
func classifyStyle(style string) (entity.ItemKind, int) {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))

	switch {
	case s == "title":
		return entity.ItemKindTitle, 0
	case strings.HasPrefix(s, "heading"):
		level, err := strconv.Atoi(strings.TrimPrefix(s, "heading"))
		if err != nil || level < 1 {
			level = 1
		}
		return entity.ItemKindSectionHeader, level
	case strings.HasPrefix(s, "list"):
		level := 1
		if n, err := strconv.Atoi(s[len(s)-1:]); err == nil && n > 1 {
			level = n
		}
		return entity.ItemKindListItem, level
	default:
		return entity.ItemKindParagraph, 0
	}
}
