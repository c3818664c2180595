package extractor

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExtractor() *Extractor {
	return NewExtractor(config.ExtractorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout:        5 * time.Second,
			ConnTimeout:           time.Second,
			KeepAlive:             time.Second,
			IdleConnTimeout:       time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
		},
		MaxRemoteSize: 1 << 20,
	}, zap.NewNop())
}

func kinds(doc *entity.Document) []entity.ItemKind {
	out := make([]entity.ItemKind, len(doc.Items))
	for i, item := range doc.Items {
		out[i] = item.Kind
	}
	return out
}

func TestExtractBytes_Text(t *testing.T) {
	doc, err := newTestExtractor().ExtractBytes(context.Background(), "notes.txt",
		[]byte("First line\ncontinues here.\r\n\r\n\nSecond paragraph."))
	require.NoError(t, err)

	require.Len(t, doc.Items, 2)
	assert.Equal(t, "First line continues here.", doc.Items[0].Text)
	assert.Equal(t, "Second paragraph.", doc.Items[1].Text)
	assert.Equal(t, "notes.txt", doc.Origin.Filename)
	assert.Equal(t, "text/plain", doc.Origin.MimeType)
	assert.Equal(t, "notes", doc.Name)
}

func TestExtractBytes_Markdown(t *testing.T) {
	src := "# Project\n\nIntro with *emphasis*.\n\n## Goals\n\n- fast\n- safe\n  - nested\n\n```go\nfmt.Println(1)\n```\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"

	doc, err := newTestExtractor().ExtractBytes(context.Background(), "README.md", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, []entity.ItemKind{
		entity.ItemKindTitle,
		entity.ItemKindParagraph,
		entity.ItemKindSectionHeader,
		entity.ItemKindListItem,
		entity.ItemKindListItem,
		entity.ItemKindListItem,
		entity.ItemKindCode,
		entity.ItemKindTable,
	}, kinds(doc))

	assert.Equal(t, "Intro with emphasis.", doc.Items[1].Text)
	assert.Equal(t, 1, doc.Items[2].Level)
	assert.Equal(t, "nested", doc.Items[5].Text)
	assert.Equal(t, 2, doc.Items[5].Level)
	assert.Equal(t, doc.Items[3].ListID, doc.Items[5].ListID)
	assert.Equal(t, "fmt.Println(1)", doc.Items[6].Text)
	assert.Equal(t, "| a | b |\n| 1 | 2 |", doc.Items[7].Text)

	assert.Contains(t, doc.Markdown(), "## Goals")
}

func TestExtractBytes_HTML(t *testing.T) {
	src := `<html><head><title>Ignored</title><style>p{}</style></head><body>
<h1>Spec</h1><p>Some   text.</p>
<h3>Details</h3>
<ul><li>one</li><li>two<ul><li>deep</li></ul></li></ul>
<pre>code  block</pre>
<table><tr><th>k</th><th>v</th></tr><tr><td>x</td><td>1</td></tr></table>
<script>alert(1)</script>
</body></html>`

	doc, err := newTestExtractor().ExtractBytes(context.Background(), "page.html", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, []entity.ItemKind{
		entity.ItemKindTitle,
		entity.ItemKindParagraph,
		entity.ItemKindSectionHeader,
		entity.ItemKindListItem,
		entity.ItemKindListItem,
		entity.ItemKindListItem,
		entity.ItemKindCode,
		entity.ItemKindTable,
	}, kinds(doc))

	assert.Equal(t, "Some text.", doc.Items[1].Text)
	assert.Equal(t, 2, doc.Items[2].Level)
	assert.Equal(t, "deep", doc.Items[5].Text)
	assert.Equal(t, 2, doc.Items[5].Level)
	assert.Equal(t, "code  block", doc.Items[6].Text)
	assert.Equal(t, "| k | v |\n| x | 1 |", doc.Items[7].Text)
}

func TestExtractBytes_PDF(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(40, 10, "Hello from page one")
	pdf.AddPage()
	pdf.Cell(40, 10, "Second page text")

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))

	doc, err := newTestExtractor().ExtractBytes(context.Background(), "report.pdf", buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, 2, doc.Pages)
	require.NotEmpty(t, doc.Items)
	assert.Equal(t, 1, doc.Items[0].Page)
	assert.Contains(t, doc.Items[0].Text, "Hello")
	assert.Equal(t, 2, doc.Items[len(doc.Items)-1].Page)
}

func TestExtractBytes_Errors(t *testing.T) {
	e := newTestExtractor()
	ctx := context.Background()

	_, err := e.ExtractBytes(ctx, "empty.txt", nil)
	assert.ErrorIs(t, err, entity.ErrExtraction)

	_, err = e.ExtractBytes(ctx, "blank.txt", []byte("  \n\n "))
	assert.ErrorIs(t, err, entity.ErrExtraction)

	_, err = e.ExtractBytes(ctx, "image.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	assert.ErrorIs(t, err, entity.ErrExtraction)
	assert.ErrorIs(t, err, entity.ErrUnsupportedFormat)

	_, err = e.ExtractBytes(ctx, "broken.pdf", []byte("%PDF-1.4 not really"))
	assert.ErrorIs(t, err, entity.ErrExtraction)
}

func TestExtract_LocalPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "req.md")
	require.NoError(t, os.WriteFile(path, []byte("# Requirements\n\nUsers log in."), 0o600))

	e := newTestExtractor()

	doc, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "req.md", doc.Origin.Filename)
	assert.Equal(t, path, doc.Origin.URI)

	_, err = e.Extract(context.Background(), filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, entity.ErrSourceNotFound)

	_, err = e.Extract(context.Background(), "  ")
	assert.ErrorIs(t, err, entity.ErrMissingField)
}

func TestExtract_Remote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/docs/guide":
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			_, _ = w.Write([]byte("## Guide\n\nRemote body."))
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<p>Served html</p>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	e := newTestExtractor()
	ctx := context.Background()

	doc, err := e.Extract(ctx, server.URL+"/docs/guide")
	require.NoError(t, err)
	assert.Equal(t, "guide", doc.Origin.Filename)
	assert.Equal(t, "text/markdown", doc.Origin.MimeType)
	assert.Equal(t, entity.ItemKindSectionHeader, doc.Items[0].Kind)

	doc, err = e.Extract(ctx, server.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "Served html", doc.Items[0].Text)

	_, err = e.Extract(ctx, server.URL+"/nothing.pdf")
	assert.ErrorIs(t, err, entity.ErrSourceNotFound)
}

func TestExtractAll_SkipsFailures(t *testing.T) {
	dir := t.TempDir()
	good1 := filepath.Join(dir, "a.txt")
	good2 := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(good1, []byte("alpha"), 0o600))
	require.NoError(t, os.WriteFile(good2, []byte("beta"), 0o600))

	sources := []string{good1, filepath.Join(dir, "missing.txt"), good2}

	var names []string
	for doc := range newTestExtractor().ExtractAll(context.Background(), sources) {
		names = append(names, doc.Origin.Filename)
	}
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)
}

func TestExtractAll_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	ch := newTestExtractor().ExtractAll(ctx, []string{path, path, path})

	<-ch
	cancel()

	count := 0
	for range ch {
		count++
	}
	assert.LessOrEqual(t, count, 1)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		want        Format
		ok          bool
	}{
		{"extension wins", "a.PDF", "text/html", []byte("x"), FormatPDF, true},
		{"content type", "download", "application/pdf; qs=1", []byte("x"), FormatPDF, true},
		{"sniff html", "download", "", []byte("<!DOCTYPE html><html></html>"), FormatHTML, true},
		{"sniff pdf", "download", "", []byte("%PDF-1.7\n"), FormatPDF, true},
		{"sniff text", "download", "application/octet-stream", []byte("plain words"), FormatText, true},
		{"unknown", "x.bin", "", []byte{0x00, 0x01, 0x02, 0xff}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := detectFormat(tt.filename, tt.contentType, tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyStyle(t *testing.T) {
	kind, level := classifyStyle("Heading2")
	assert.Equal(t, entity.ItemKindSectionHeader, kind)
	assert.Equal(t, 2, level)

	kind, _ = classifyStyle("Title")
	assert.Equal(t, entity.ItemKindTitle, kind)

	kind, level = classifyStyle("ListBullet2")
	assert.Equal(t, entity.ItemKindListItem, kind)
	assert.Equal(t, 2, level)

	kind, _ = classifyStyle("Normal")
	assert.Equal(t, entity.ItemKindParagraph, kind)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/a.pdf"))
	assert.True(t, IsRemote("http://localhost:8080/x"))
	assert.False(t, IsRemote("/tmp/a.pdf"))
	assert.False(t, IsRemote("file:///tmp/a.pdf"))
	assert.False(t, IsRemote("C:\\docs\\a.pdf"))
}
