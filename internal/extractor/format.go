package extractor

import (
	"archive/zip"
	"bytes"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// Format is a supported source document format
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

const docxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var extensionFormats = map[string]Format{
	".pdf":      FormatPDF,
	".docx":     FormatDOCX,
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".xhtml":    FormatHTML,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".txt":      FormatText,
	".text":     FormatText,
}

var mimeFormats = map[string]Format{
	"application/pdf":       FormatPDF,
	docxMimeType:            FormatDOCX,
	"text/html":             FormatHTML,
	"application/xhtml+xml": FormatHTML,
	"text/markdown":         FormatMarkdown,
	"text/x-markdown":       FormatMarkdown,
	"text/plain":            FormatText,
}

// MimeType returns the canonical MIME type of the format
func (f Format) MimeType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return docxMimeType
	case FormatHTML:
		return "text/html"
	case FormatMarkdown:
		return "text/markdown"
	default:
		return "text/plain"
	}
}

// SupportedExtensions lists the file extensions accepted for upload
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".html", ".htm", ".md", ".markdown", ".txt"}
}

// detectFormat resolves the format from the file extension, then the
// declared content type, then the content itself.
func detectFormat(name, contentType string, data []byte) (Format, bool) {
	if f, ok := extensionFormats[strings.ToLower(filepath.Ext(name))]; ok {
		return f, true
	}

	if f, ok := formatFromMime(contentType); ok {
		return f, true
	}

	sniffed := http.DetectContentType(data)
	if f, ok := formatFromMime(sniffed); ok {
		return f, true
	}

	if strings.HasPrefix(sniffed, "application/zip") && isDOCX(data) {
		return FormatDOCX, true
	}

	return "", false
}

func formatFromMime(contentType string) (Format, bool) {
	if contentType == "" {
		return "", false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}

	f, ok := mimeFormats[mediaType]
	return f, ok
}

func isDOCX(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return true
		}
	}
	return false
}
