package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/metrics"
)

// Loader builds the underlying embedder. It runs at most once per LazyEmbedder.
type Loader func(ctx context.Context) (domain.Embedder, error)

// LazyEmbedder defers provider construction until first use.
// Concurrent first callers wait on the same load. A failed load is kept:
// the provider is never rebuilt and every call reports ErrEmbeddingUnavailable.
type LazyEmbedder struct {
	load   Loader
	logger *zap.Logger

	once  sync.Once
	inner domain.Embedder
	err   error
}

// NewLazyEmbedder creates a lazily initialized embedder.
func NewLazyEmbedder(load Loader, logger *zap.Logger) *LazyEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LazyEmbedder{load: load, logger: logger}
}

// Load initializes the provider now. Safe to call repeatedly and concurrently.
func (l *LazyEmbedder) Load(ctx context.Context) error {
	l.once.Do(func() {
		start := time.Now()
		// The first caller's cancellation must not poison the shared provider.
		inner, err := l.load(context.WithoutCancel(ctx))
		switch {
		case err != nil:
			l.err = fmt.Errorf("load embedder: %w: %w", domain.ErrEmbeddingUnavailable, err)
		case inner == nil:
			l.err = fmt.Errorf("load embedder: %w: loader returned nil", domain.ErrEmbeddingUnavailable)
		default:
			l.inner = inner
		}

		elapsed := time.Since(start)
		if l.err != nil {
			metrics.EmbeddingProviderLoads.WithLabelValues("error").Observe(elapsed.Seconds())
			l.logger.Error("Embedding provider failed to load", zap.Error(l.err))
			return
		}
		metrics.EmbeddingProviderLoads.WithLabelValues("ok").Observe(elapsed.Seconds())
		l.logger.Info("Embedding provider loaded", zap.Duration("duration", elapsed))
	})
	return l.err
}

// Embed loads the provider on first use and delegates to it.
func (l *LazyEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := l.Load(ctx); err != nil {
		return domain.EmbeddingResult{}, err
	}
	return l.inner.Embed(ctx, text) //nolint:wrapcheck // transparent decorator
}

// BatchEmbed loads the provider on first use and delegates to it.
func (l *LazyEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if err := l.Load(ctx); err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	return domain.EmbedAll(ctx, l.inner, texts) //nolint:wrapcheck // transparent decorator
}

// HealthCheck reports a failed load, otherwise delegates to the provider.
func (l *LazyEmbedder) HealthCheck(ctx context.Context) error {
	if err := l.Load(ctx); err != nil {
		return err
	}
	if hc, ok := l.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}
