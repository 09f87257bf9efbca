package domain

import "errors"

var (
	// ErrUnsupportedFormat signals a document format other than pdf or docx.
	ErrUnsupportedFormat = errors.New("unsupported format: only pdf and docx are allowed")
	// ErrExtraction signals document bytes that cannot be parsed as the declared format.
	ErrExtraction = errors.New("text extraction failed")
	// ErrEmbeddingUnavailable signals an embedding provider that failed to load or to embed.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrInvalidInput signals a malformed request at the transport boundary.
	ErrInvalidInput = errors.New("invalid input")
)
