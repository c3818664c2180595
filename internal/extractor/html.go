package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/futig/mindtrace-ai/internal/entity"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type htmlWalker struct {
	doc       *entity.Document
	title     string
	listID    int
	listDepth int
}

func parseHTML(doc *entity.Document, data []byte) error {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}

	w := &htmlWalker{doc: doc}
	w.walk(root)

	if doc.IsEmpty() && w.title != "" {
		doc.Add(entity.Item{Kind: entity.ItemKindTitle, Text: w.title})
	}

	return nil
}

func (w *htmlWalker) walk(n *html.Node) {
	if n.Type == html.TextNode {
		// loose text directly inside containers such as <div> or <body>
		if text := collapseSpace(n.Data); text != "" {
			w.doc.Add(entity.Item{Kind: entity.ItemKindParagraph, Text: text})
		}
		return
	}

	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Head:
			if t := findFirst(n, atom.Title); t != nil {
				w.title = collapseSpace(textContent(t))
			}
			return
		case atom.H1:
			w.doc.Add(entity.Item{Kind: entity.ItemKindTitle, Text: collapseSpace(textContent(n))})
			return
		case atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			level := int(n.Data[1]-'0') - 1
			w.doc.Add(entity.Item{Kind: entity.ItemKindSectionHeader, Text: collapseSpace(textContent(n)), Level: level})
			return
		case atom.P, atom.Blockquote, atom.Dt, atom.Dd, atom.Figcaption, atom.Caption:
			w.doc.Add(entity.Item{Kind: entity.ItemKindParagraph, Text: collapseSpace(textContent(n))})
			return
		case atom.Pre:
			w.doc.Add(entity.Item{Kind: entity.ItemKindCode, Text: strings.Trim(textContent(n), "\n")})
			return
		case atom.Table:
			w.doc.Add(entity.Item{Kind: entity.ItemKindTable, Text: tableText(n)})
			return
		case atom.Ul, atom.Ol:
			if w.listDepth == 0 {
				w.listID++
			}
			w.listDepth++
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				w.walk(c)
			}
			w.listDepth--
			return
		case atom.Li:
			w.listItem(n)
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// listItem emits the item's own text, then descends into nested lists
func (w *htmlWalker) listItem(n *html.Node) {
	var own strings.Builder
	var nested []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
			nested = append(nested, c)
			continue
		}
		own.WriteString(textContent(c))
		own.WriteString(" ")
	}

	w.doc.Add(entity.Item{
		Kind:   entity.ItemKindListItem,
		Text:   collapseSpace(own.String()),
		Level:  max(w.listDepth, 1),
		ListID: w.listID,
	})

	for _, c := range nested {
		w.walk(c)
	}
}

func tableText(table *html.Node) string {
	var rows []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
					cells = append(cells, collapseSpace(textContent(c)))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, "| "+strings.Join(cells, " | ")+" |")
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(table)
	return strings.Join(rows, "\n")
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
		return ""
	}

	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
		if c.Type == html.ElementNode && c.DataAtom == atom.Br {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
