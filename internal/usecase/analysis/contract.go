package analysis

import (
	"context"

	"github.com/kailas-cloud/resumatch/internal/domain/document"
)

// Extractor turns an uploaded document into plain text.
type Extractor interface {
	Extract(ctx context.Context, doc document.Document) (string, error)
}

// SemanticScorer compares two texts by embedding similarity, scaled to 0-100.
type SemanticScorer interface {
	Score(ctx context.Context, resumeText, jdText string) (float64, error)
}
