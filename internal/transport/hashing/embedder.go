// Package hashing is an offline embedding provider based on feature hashing.
// Vectors are deterministic, need no model download and capture word and
// word-pair overlap only; use it for local runs and tests.
package hashing

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/metrics"
)

// DefaultDimensions is used when no dimension is configured.
const DefaultDimensions = 512

const (
	providerName = "hashing"
	modelName    = "feature-hashing"
	bigramWeight = 0.5
)

// Embedder maps text to a fixed-size signed feature-hashing vector.
type Embedder struct {
	dims int
}

// NewEmbedder creates a hashing embedder with the given dimension.
func NewEmbedder(dims int) *Embedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Embedder{dims: dims}
}

// Dimensions returns the vector size.
func (e *Embedder) Dimensions() int { return e.dims }

// Embed implements domain.Embedder. Empty text yields the zero vector.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // context error
	}
	start := time.Now()

	words := tokenize(text)
	vec := make([]float32, e.dims)
	acc := make([]float64, e.dims)
	for i, w := range words {
		e.add(acc, w, 1)
		if i > 0 {
			e.add(acc, words[i-1]+" "+w, bigramWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i, v := range acc {
			vec[i] = float32(v / norm)
		}
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, modelName, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, modelName).Observe(time.Since(start).Seconds())

	return domain.EmbeddingResult{
		Embedding:    vec,
		PromptTokens: len(words),
		TotalTokens:  len(words),
	}, nil
}

// add hashes feature into a bucket; one hash bit picks the sign to reduce collision bias.
func (e *Embedder) add(acc []float64, feature string, weight float64) {
	h := xxhash.Sum64String(feature)
	idx := h % uint64(len(acc))
	if h>>63 == 1 {
		weight = -weight
	}
	acc[idx] += weight
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
