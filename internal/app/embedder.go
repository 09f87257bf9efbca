package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/config"
	"github.com/kailas-cloud/resumatch/internal/db"
	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/metrics"
	"github.com/kailas-cloud/resumatch/internal/repository/embcache"
	geminiEmb "github.com/kailas-cloud/resumatch/internal/transport/gemini"
	"github.com/kailas-cloud/resumatch/internal/transport/hashing"
	openaiEmb "github.com/kailas-cloud/resumatch/internal/transport/openai"
	"github.com/kailas-cloud/resumatch/internal/transport/tokenizer"
	embeddinguc "github.com/kailas-cloud/resumatch/internal/usecase/embedding"
)

// CacheConfig binds an optional key-value store to the embedder chain.
type CacheConfig struct {
	Store db.KVStore // nil disables caching
	TTL   time.Duration
}

// BuildEmbedder assembles the decorator chain, outermost first:
// Lazy -> Instruction -> Instrumented -> Cached -> Truncating -> provider.
// Nothing touches the provider until the first Load or Embed.
func BuildEmbedder(cfg config.EmbeddingConfig, cache CacheConfig, logger *zap.Logger) *embeddinguc.LazyEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}

	load := func(ctx context.Context) (domain.Embedder, error) {
		base, err := newProvider(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}

		embedder := base
		if cfg.MaxInputTokens > 0 && cfg.Provider != config.ProviderHashing {
			embedder = embeddinguc.NewTruncatingEmbedder(
				embedder, tokenizer.New(cfg.Model, logger), cfg.MaxInputTokens, logger,
			)
		}

		if cache.Store != nil {
			embedder = embcache.New(embedder, cache.Store, embcache.Config{
				Model:      cfg.Provider + "/" + cfg.Model,
				Dimensions: cfg.Dimensions,
				TTL:        cache.TTL,
			}, metrics.EmbeddingCacheTotal, logger)
		}

		embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, logger)

		// Instruction is outermost so the cache key includes it.
		if cfg.Instruction != "" {
			embedder = domain.NewInstructionEmbedder(embedder, cfg.Instruction)
		}
		return embedder, nil
	}

	return embeddinguc.NewLazyEmbedder(load, logger.With(
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
	))
}

func newProvider(ctx context.Context, cfg config.EmbeddingConfig, logger *zap.Logger) (domain.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		}), nil
	case config.ProviderGemini:
		e, err := geminiEmb.NewEmbedder(ctx, &geminiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini provider: %w", err)
		}
		return e, nil
	case config.ProviderHashing:
		return hashing.NewEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
