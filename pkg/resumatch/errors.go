package resumatch

import "github.com/kailas-cloud/resumatch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrUnsupportedFormat    = domain.ErrUnsupportedFormat
	ErrExtraction           = domain.ErrExtraction
	ErrEmbeddingUnavailable = domain.ErrEmbeddingUnavailable
	ErrInvalidInput         = domain.ErrInvalidInput
)
