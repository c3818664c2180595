package extractor

import (
	"strings"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)).Parser()

type markdownWalker struct {
	doc    *entity.Document
	source []byte
	listID int
}

func parseMarkdown(doc *entity.Document, data []byte) error {
	root := markdownParser.Parse(text.NewReader(data))

	w := &markdownWalker{doc: doc, source: data}
	w.blocks(root, 0)

	return nil
}

func (w *markdownWalker) blocks(parent ast.Node, listDepth int) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			item := entity.Item{Kind: entity.ItemKindSectionHeader, Text: w.inline(node), Level: node.Level - 1}
			if node.Level == 1 {
				item = entity.Item{Kind: entity.ItemKindTitle, Text: item.Text}
			}
			w.doc.Add(item)
		case *ast.Paragraph, *ast.TextBlock:
			w.doc.Add(entity.Item{Kind: entity.ItemKindParagraph, Text: w.inline(node)})
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			w.doc.Add(entity.Item{Kind: entity.ItemKindCode, Text: w.lines(node)})
		case *ast.HTMLBlock:
			w.doc.Add(entity.Item{Kind: entity.ItemKindParagraph, Text: w.lines(node)})
		case *ast.List:
			if listDepth == 0 {
				w.listID++
			}
			w.list(node, listDepth+1)
		case *east.Table:
			w.doc.Add(entity.Item{Kind: entity.ItemKindTable, Text: w.table(node)})
		case *ast.ThematicBreak:
		default:
			// block quotes and other containers
			w.blocks(node, listDepth)
		}
	}
}

func (w *markdownWalker) list(list *ast.List, depth int) {
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		var own []string
		var nested []*ast.List
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				nested = append(nested, sub)
				continue
			}
			if t := w.inline(c); t != "" {
				own = append(own, t)
			}
		}

		w.doc.Add(entity.Item{
			Kind:   entity.ItemKindListItem,
			Text:   strings.Join(own, " "),
			Level:  depth,
			ListID: w.listID,
		})

		for _, sub := range nested {
			w.list(sub, depth+1)
		}
	}
}

func (w *markdownWalker) table(table *east.Table) string {
	var rows []string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, w.inline(cell))
		}
		rows = append(rows, "| "+strings.Join(cells, " | ")+" |")
	}
	return strings.Join(rows, "\n")
}

// inline concatenates the text of inline descendants
func (w *markdownWalker) inline(n ast.Node) string {
	var b strings.Builder
	var visit func(ast.Node)
	visit = func(n ast.Node) {
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(w.source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteString(" ")
			}
			return
		case *ast.String:
			b.Write(node.Value)
			return
		case *ast.AutoLink:
			b.Write(node.URL(w.source))
			return
		case *ast.RawHTML:
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			visit(c)
		}
	}
	visit(n)
	return strings.TrimSpace(b.String())
}

func (w *markdownWalker) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.source))
	}
	return strings.TrimRight(b.String(), "\n")
}
