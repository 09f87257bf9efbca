package embedding

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/metrics"
)

// Tokenizer counts and reassembles model tokens.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(tokens []int) (string, error)
}

// TruncatingEmbedder cuts inputs to the provider's token limit before embedding.
// Whole resumes routinely exceed embedding context windows.
type TruncatingEmbedder struct {
	inner     domain.Embedder
	tokenizer Tokenizer
	maxTokens int
	logger    *zap.Logger
}

// NewTruncatingEmbedder wraps inner. maxTokens <= 0 disables truncation.
func NewTruncatingEmbedder(
	inner domain.Embedder, tokenizer Tokenizer, maxTokens int, logger *zap.Logger,
) *TruncatingEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TruncatingEmbedder{inner: inner, tokenizer: tokenizer, maxTokens: maxTokens, logger: logger}
}

// Embed truncates text and delegates to inner.
func (e *TruncatingEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return e.inner.Embed(ctx, e.truncate(text)) //nolint:wrapcheck // transparent decorator
}

// BatchEmbed truncates every text and delegates to inner.
func (e *TruncatingEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	cut := make([]string, len(texts))
	for i, t := range texts {
		cut[i] = e.truncate(t)
	}
	return domain.EmbedAll(ctx, e.inner, cut) //nolint:wrapcheck // transparent decorator
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (e *TruncatingEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

// truncate returns text unchanged when it fits or when the tokenizer is unusable;
// an oversized input then surfaces as a provider error instead of a silent cut.
func (e *TruncatingEmbedder) truncate(text string) string {
	if e.maxTokens <= 0 || e.tokenizer == nil || text == "" {
		return text
	}

	tokens, err := e.tokenizer.Encode(text)
	if err != nil {
		e.logger.Warn("Tokenizer unavailable, sending input untruncated", zap.Error(err))
		return text
	}
	if len(tokens) <= e.maxTokens {
		return text
	}

	cut, err := e.tokenizer.Decode(tokens[:e.maxTokens])
	if err != nil {
		e.logger.Warn("Token decode failed, sending input untruncated", zap.Error(err))
		return text
	}

	metrics.EmbeddingTruncationsTotal.Inc()
	e.logger.Debug("Embedding input truncated",
		zap.Int("tokens", len(tokens)),
		zap.Int("max_tokens", e.maxTokens),
	)
	return cut
}
