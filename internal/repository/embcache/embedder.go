// Package embcache caches embedding vectors in a key-value store.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/db"
	"github.com/kailas-cloud/resumatch/internal/domain"
)

const keyPrefix = "resumatch:emb:v1:"

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config scopes cache entries. Model and Dimensions are part of every key,
// so switching either never serves vectors of the old shape.
type Config struct {
	Model      string
	Dimensions int
	// TTL is the entry lifetime; zero keeps entries until evicted.
	TTL time.Duration
}

// CachedEmbedder caches embeddings in a key-value store.
// Store failures degrade to a cache miss and are only logged.
type CachedEmbedder struct {
	inner   domain.Embedder
	store   store
	cfg     Config
	scope   string
	lookups *prometheus.CounterVec
	logger  *zap.Logger
}

// New creates a caching decorator. lookups is a counter vec labelled by
// "result" (hit or miss) and may be nil.
func New(
	inner domain.Embedder,
	s store,
	cfg Config,
	lookups *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{
		inner:   inner,
		store:   s,
		cfg:     cfg,
		scope:   keyPrefix + cfg.Model + ":" + strconv.Itoa(cfg.Dimensions) + ":",
		lookups: lookups,
		logger:  logger,
	}
}

// Embed returns a cached vector with zero token usage, or embeds and stores it.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.key(text)
	if vec, ok := c.lookup(ctx, key); ok {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	c.save(ctx, key, result.Embedding)
	return result, nil
}

// BatchEmbed serves hits from the cache and sends each distinct miss to the
// inner embedder once. A resume scored against itself costs one vector.
func (c *CachedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	embeddings := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	first := make(map[string]int, len(texts))
	var missPos []int
	var missTexts []string

	for i, t := range texts {
		keys[i] = c.key(t)
		if _, dup := first[keys[i]]; dup {
			continue
		}
		first[keys[i]] = i
		if vec, ok := c.lookup(ctx, keys[i]); ok {
			embeddings[i] = vec
			continue
		}
		missPos = append(missPos, i)
		missTexts = append(missTexts, t)
	}

	var res domain.BatchEmbeddingResult
	if len(missTexts) > 0 {
		var err error
		res, err = domain.EmbedAll(ctx, c.inner, missTexts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("embed misses: %w", err)
		}
		for j, i := range missPos {
			embeddings[i] = res.Embeddings[j]
			c.save(ctx, keys[i], res.Embeddings[j])
		}
	}

	for i, key := range keys {
		if j := first[key]; j != i {
			embeddings[i] = embeddings[j]
		}
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (c *CachedEmbedder) key(text string) string {
	h := sha256.Sum256([]byte(text))
	return c.scope + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	vec, err := c.get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Embedding cache read failed", zap.String("key", key), zap.Error(err))
		}
		c.count("miss")
		return nil, false
	}
	c.count("hit")
	return vec, true
}

func (c *CachedEmbedder) get(ctx context.Context, key string) ([]float32, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err //nolint:wrapcheck // classified by lookup
	}
	vec, err := decodeVector(data)
	if err != nil {
		return nil, err
	}
	if c.cfg.Dimensions > 0 && len(vec) != c.cfg.Dimensions {
		return nil, fmt.Errorf("%w: %d dims, want %d", errCorruptEntry, len(vec), c.cfg.Dimensions)
	}
	return vec, nil
}

func (c *CachedEmbedder) save(ctx context.Context, key string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, encodeVector(vec), c.cfg.TTL); err != nil {
		c.logger.Warn("Embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedEmbedder) count(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}
