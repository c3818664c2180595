package entity

import "errors"

// Domain errors
var (
	// Extraction errors
	ErrExtraction        = errors.New("document extraction failed")
	ErrSourceNotFound    = errors.New("source not found")
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// Chunking errors
	ErrChunking = errors.New("document chunking failed")

	// Upstream model errors
	ErrEmbedding  = errors.New("embedding request failed")
	ErrCompletion = errors.New("completion request failed")

	// Vector store errors
	ErrSearch     = errors.New("vector search failed")
	ErrStoreWrite = errors.New("vector store write failed")

	// Model output could not be decoded
	ErrParse = errors.New("model output is not valid structured data")

	// Upload errors
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidExtension = errors.New("invalid file extension")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
