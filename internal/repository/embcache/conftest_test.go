package embcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/db"
	"github.com/kailas-cloud/resumatch/internal/domain"
)

// countingEmbedder returns a vector derived from the text length and records every input.
type countingEmbedder struct {
	err    error
	embeds []string
	batch  [][]string
}

func vectorFor(text string) []float32 {
	return []float32{float32(len(text)), 1}
}

func (e *countingEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.embeds = append(e.embeds, text)
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	return domain.EmbeddingResult{Embedding: vectorFor(text), PromptTokens: 3, TotalTokens: 3}, nil
}

func (e *countingEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	e.batch = append(e.batch, append([]string(nil), texts...))
	if e.err != nil {
		return domain.BatchEmbeddingResult{}, e.err
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		out.Embeddings[i] = vectorFor(t)
		out.PromptTokens += 3
		out.TotalTokens += 3
	}
	return out, nil
}

// fakeStore is an in-memory store with switchable failures.
type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	getKeys []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getKeys = append(s.getKeys, key)
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (s *fakeStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

var errStoreDown = errors.New("connection refused")

func newCache(t *testing.T, inner domain.Embedder, s *fakeStore) *CachedEmbedder {
	t.Helper()
	return New(inner, s, Config{Model: "openai/text-embedding-3-small", Dimensions: 2, TTL: time.Hour}, nil, zap.NewNop())
}
