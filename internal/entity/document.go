package entity

import (
	"fmt"
	"strings"
)

// ItemKind is the structural role of a document item
type ItemKind string

const (
	ItemKindTitle         ItemKind = "title"
	ItemKindSectionHeader ItemKind = "section_header"
	ItemKindParagraph     ItemKind = "paragraph"
	ItemKindListItem      ItemKind = "list_item"
	ItemKindCode          ItemKind = "code"
	ItemKindTable         ItemKind = "table"
)

// IsHeading reports whether the item opens a new section
func (k ItemKind) IsHeading() bool {
	return k == ItemKindTitle || k == ItemKindSectionHeader
}

// Origin describes where a document was read from
type Origin struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimetype"`
	URI      string `json:"uri,omitempty"`
}

// Item is a single node of the normalized text tree, in reading order.
// Level is the heading depth for section headers and the nesting depth for list items.
// Page is 1-based; 0 means the format has no pagination.
type Item struct {
	Kind  ItemKind `json:"kind"`
	Text  string   `json:"text"`
	Level int      `json:"level,omitempty"`
	Page  int      `json:"page,omitempty"`
	// ListID groups list items that belong to the same list
	ListID int `json:"list_id,omitempty"`
}

// Document is the normalized representation of an extracted source
type Document struct {
	SchemaName string `json:"schema_name"`
	Version    string `json:"version"`
	Name       string `json:"name"`
	Origin     Origin `json:"origin"`
	Pages      int    `json:"pages,omitempty"`
	Items      []Item `json:"texts"`
}

const (
	DocumentSchemaName    = "MindTraceDocument"
	DocumentSchemaVersion = "1.0.0"
)

// NewDocument creates an empty document for the given origin
func NewDocument(name string, origin Origin) *Document {
	return &Document{
		SchemaName: DocumentSchemaName,
		Version:    DocumentSchemaVersion,
		Name:       name,
		Origin:     origin,
		Items:      make([]Item, 0),
	}
}

// Add appends an item, skipping blank text
func (d *Document) Add(item Item) {
	item.Text = strings.TrimSpace(item.Text)
	if item.Text == "" {
		return
	}
	if item.Page > d.Pages {
		d.Pages = item.Page
	}
	d.Items = append(d.Items, item)
}

// IsEmpty reports whether the document has no text at all
func (d *Document) IsEmpty() bool {
	return d == nil || len(d.Items) == 0
}

// Markdown renders the text tree as markdown
func (d *Document) Markdown() string {
	var b strings.Builder
	prevList := -1

	for i, item := range d.Items {
		if i > 0 {
			if item.Kind == ItemKindListItem && prevList == item.ListID {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}

		switch item.Kind {
		case ItemKindTitle:
			b.WriteString("# ")
			b.WriteString(item.Text)
		case ItemKindSectionHeader:
			level := min(max(item.Level, 1), 5)
			b.WriteString(strings.Repeat("#", level+1))
			b.WriteString(" ")
			b.WriteString(item.Text)
		case ItemKindListItem:
			b.WriteString(strings.Repeat("  ", max(item.Level-1, 0)))
			b.WriteString("- ")
			b.WriteString(item.Text)
		case ItemKindCode:
			fmt.Fprintf(&b, "```\n%s\n```", item.Text)
		default:
			b.WriteString(item.Text)
		}

		if item.Kind == ItemKindListItem {
			prevList = item.ListID
		} else {
			prevList = -1
		}
	}

	return b.String()
}
