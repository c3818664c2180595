// Package extractor turns PDF, DOCX, HTML, Markdown and plain text sources
// into the normalized document tree.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/futig/mindtrace-ai/internal/integration/common"
	pkghttp "github.com/futig/mindtrace-ai/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type downloader interface {
	Download(ctx context.Context, url string, maxSize int64) ([]byte, string, error)
}

type Extractor struct {
	downloader    downloader
	maxRemoteSize int64
	logger        *zap.Logger
}

func NewExtractor(cfg config.ExtractorConfig, logger *zap.Logger, opts ...pkghttp.HttpOpts) *Extractor {
	return &Extractor{
		downloader:    common.NewBaseConnector("", cfg.HTTPClientConfig, logger, opts...),
		maxRemoteSize: cfg.MaxRemoteSize,
		logger:        logger,
	}
}

// IsRemote reports whether source is an http(s) URL
func IsRemote(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Extract reads a local path or downloads a URL and parses it
func (e *Extractor) Extract(ctx context.Context, source string) (*entity.Document, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: url_or_path", entity.ErrMissingField)
	}

	if IsRemote(source) {
		return e.extractRemote(ctx, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", entity.ErrSourceNotFound, source)
		}
		return nil, fmt.Errorf("%w: read %s: %w", entity.ErrExtraction, source, err)
	}

	return e.parse(ctx, filepath.Base(source), "", source, data)
}

func (e *Extractor) extractRemote(ctx context.Context, source string) (*entity.Document, error) {
	ctxzap.Info(ctx, "downloading remote document", zap.String("url", source))

	data, contentType, err := e.downloader.Download(ctx, source, e.maxRemoteSize)
	if err != nil {
		var httpErr *pkghttp.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == 404 {
			return nil, fmt.Errorf("%w: %s", entity.ErrSourceNotFound, source)
		}
		return nil, fmt.Errorf("%w: download %s: %w", entity.ErrExtraction, source, err)
	}

	name := source
	if u, err := url.Parse(source); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			name = base
		}
	}

	return e.parse(ctx, name, contentType, source, data)
}

// ExtractBytes parses an in-memory document; the format is taken from name
// or sniffed from the content
func (e *Extractor) ExtractBytes(ctx context.Context, name string, data []byte) (*entity.Document, error) {
	return e.parse(ctx, name, "", "", data)
}

// ExtractAll extracts sources one at a time as the channel is drained.
// Sources that fail are logged and skipped. The channel is closed when all
// sources are consumed or ctx is done.
func (e *Extractor) ExtractAll(ctx context.Context, sources []string) <-chan *entity.Document {
	out := make(chan *entity.Document)

	go func() {
		defer close(out)

		for _, source := range sources {
			if ctx.Err() != nil {
				return
			}

			doc, err := e.Extract(ctx, source)
			if err != nil {
				ctxzap.Warn(ctx, "skipping source that failed to extract",
					zap.String("source", source),
					zap.Error(err),
				)
				continue
			}

			select {
			case out <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (e *Extractor) parse(ctx context.Context, name, contentType, uri string, data []byte) (*entity.Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", entity.ErrExtraction, name)
	}

	format, ok := detectFormat(name, contentType, data)
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", entity.ErrExtraction, entity.ErrUnsupportedFormat, name)
	}

	doc := entity.NewDocument(strings.TrimSuffix(name, filepath.Ext(name)), entity.Origin{
		Filename: name,
		MimeType: format.MimeType(),
		URI:      uri,
	})

	var err error
	switch format {
	case FormatPDF:
		err = parsePDF(doc, data)
	case FormatDOCX:
		err = parseDOCX(doc, data)
	case FormatHTML:
		err = parseHTML(doc, data)
	case FormatMarkdown:
		err = parseMarkdown(doc, data)
	default:
		err = parseText(doc, data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", entity.ErrExtraction, name, err)
	}

	if doc.IsEmpty() {
		return nil, fmt.Errorf("%w: %s contains no text", entity.ErrExtraction, name)
	}

	ctxzap.Info(ctx, "document extracted",
		zap.String("filename", name),
		zap.String("format", string(format)),
		zap.Int("items", len(doc.Items)),
		zap.Int("pages", doc.Pages),
	)

	return doc, nil
}
