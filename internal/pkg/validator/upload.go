package validator

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"

	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/futig/mindtrace-ai/internal/extractor"
)

// Validator validates file uploads
type Validator struct {
	cfg config.FileUploadConfig
}

func NewFileValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// MaxUploadSize is the limit applied to the whole multipart body
func (v *Validator) MaxUploadSize() int64 {
	return v.cfg.MaxUploadSize
}

// ValidateUpload checks a single uploaded document
func (v *Validator) ValidateUpload(fh *multipart.FileHeader) error {
	if fh == nil {
		return fmt.Errorf("%w: file", entity.ErrMissingField)
	}

	if strings.TrimSpace(fh.Filename) == "" {
		return fmt.Errorf("%w: empty filename", entity.ErrInvalidFile)
	}

	if fh.Size == 0 {
		return fmt.Errorf("%w: file '%s' is empty", entity.ErrInvalidFile, fh.Filename)
	}

	allowed := extractor.SupportedExtensions()
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !slices.Contains(allowed, ext) {
		return fmt.Errorf("%w: %q (allowed: %s)", entity.ErrInvalidExtension, ext, strings.Join(allowed, ", "))
	}

	if fh.Size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, fh.Filename, fh.Size, v.cfg.MaxFileSize)
	}

	return nil
}

// SanitizeFilename sanitizes a filename for safe storage
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
	)
	filename = replacer.Replace(filename)
	if filename == "." || filename == string(filepath.Separator) || filename == "" {
		return "upload"
	}
	return filename
}
