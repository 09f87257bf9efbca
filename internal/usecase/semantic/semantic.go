// Package semantic scores resume/job similarity from text embeddings.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/kailas-cloud/resumatch/internal/domain"
)

// Matcher embeds both texts and compares them by cosine similarity.
type Matcher struct {
	embed domain.Embedder
}

// New creates a Matcher over the given embedding provider.
func New(embed domain.Embedder) *Matcher {
	return &Matcher{embed: embed}
}

// Score returns cosine(embed(resume), embed(jd)) * 100.
// The value is not clamped, so unrelated texts may score below zero.
func (m *Matcher) Score(ctx context.Context, resumeText, jdText string) (float64, error) {
	res, err := domain.EmbedAll(ctx, m.embed, []string{resumeText, jdText})
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return 0, fmt.Errorf("semantic score: %w", err)
		}
		return 0, fmt.Errorf("semantic score: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	sim, err := Cosine(res.Embeddings[0], res.Embeddings[1])
	if err != nil {
		return 0, fmt.Errorf("semantic score: %w", err)
	}
	return sim * 100, nil
}

// Cosine computes cosine similarity in float64.
// A zero-norm vector yields 0. Empty or differently sized vectors are rejected.
func Cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("%w: empty embedding vector", domain.ErrEmbeddingUnavailable)
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: dimension mismatch %d != %d", domain.ErrEmbeddingUnavailable, len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
