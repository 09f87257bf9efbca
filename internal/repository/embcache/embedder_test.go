package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &countingEmbedder{}
	store := newFakeStore()
	ce := newCache(t, inner, store)
	ctx := context.Background()

	first, err := ce.Embed(ctx, "senior go engineer")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if first.TotalTokens != 3 {
		t.Errorf("miss TotalTokens = %d, want 3", first.TotalTokens)
	}

	second, err := ce.Embed(ctx, "senior go engineer")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(inner.embeds) != 1 {
		t.Fatalf("inner calls = %d, want 1", len(inner.embeds))
	}
	if second.TotalTokens != 0 || second.PromptTokens != 0 {
		t.Errorf("hit should report zero tokens, got %+v", second)
	}
	if second.Embedding[0] != first.Embedding[0] || len(second.Embedding) != 2 {
		t.Errorf("hit vector = %v, want %v", second.Embedding, first.Embedding)
	}
}

func TestEmbed_InnerErrorIsWrapped(t *testing.T) {
	cause := errors.New("quota exceeded")
	store := newFakeStore()
	ce := newCache(t, &countingEmbedder{err: cause}, store)

	_, err := ce.Embed(context.Background(), "x")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if len(store.data) != 0 {
		t.Error("failed embeddings must not be cached")
	}
}

func TestEmbed_StoreFailuresDegradeToMiss(t *testing.T) {
	store := newFakeStore()
	store.getErr = errStoreDown
	store.setErr = errStoreDown
	inner := &countingEmbedder{}
	ce := newCache(t, inner, store)

	for range 2 {
		if _, err := ce.Embed(context.Background(), "python"); err != nil {
			t.Fatalf("store failure leaked: %v", err)
		}
	}
	if len(inner.embeds) != 2 {
		t.Errorf("inner calls = %d, want 2", len(inner.embeds))
	}
}

func TestEmbed_UnreadableEntriesAreMisses(t *testing.T) {
	tests := []struct {
		name  string
		entry []byte
	}{
		{"truncated", []byte{codecVersion, 2}},
		{"unknown version", append([]byte{9}, encodeVector([]float32{1, 2})[1:]...)},
		{"wrong dimension", encodeVector([]float32{1, 2, 3})},
		{"payload mismatch", encodeVector([]float32{1, 2})[:headerSize+4]},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			inner := &countingEmbedder{}
			ce := newCache(t, inner, store)
			store.data[ce.key("go")] = tc.entry

			res, err := ce.Embed(context.Background(), "go")
			if err != nil {
				t.Fatalf("Embed: %v", err)
			}
			if len(inner.embeds) != 1 {
				t.Errorf("inner calls = %d, want 1", len(inner.embeds))
			}
			if len(res.Embedding) != 2 {
				t.Errorf("vector = %v", res.Embedding)
			}
		})
	}
}

func TestEmbed_KeyScopeAndTTL(t *testing.T) {
	store := newFakeStore()
	ce := newCache(t, &countingEmbedder{}, store)

	if _, err := ce.Embed(context.Background(), "kubernetes"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(store.data) != 1 {
		t.Fatalf("entries = %d, want 1", len(store.data))
	}
	scope := keyPrefix + "openai/text-embedding-3-small:2:"
	for key, ttl := range store.ttls {
		if !strings.HasPrefix(key, scope) || len(key) != len(scope)+64 {
			t.Errorf("key = %q, want %s<sha256 hex>", key, scope)
		}
		if ttl != time.Hour {
			t.Errorf("ttl = %v, want 1h", ttl)
		}
	}
}

func TestKey_ScopedByModelAndDimensions(t *testing.T) {
	inner := &countingEmbedder{}
	base := New(inner, newFakeStore(), Config{Model: "m", Dimensions: 256}, nil, zap.NewNop())
	otherModel := New(inner, newFakeStore(), Config{Model: "n", Dimensions: 256}, nil, zap.NewNop())
	otherDims := New(inner, newFakeStore(), Config{Model: "m", Dimensions: 512}, nil, zap.NewNop())

	if base.key("same") == otherModel.key("same") {
		t.Error("model must be part of the key")
	}
	if base.key("same") == otherDims.key("same") {
		t.Error("dimensions must be part of the key")
	}
	if base.key("a") == base.key("b") {
		t.Error("text must be part of the key")
	}
}

func TestBatchEmbed_OnlyDistinctMissesReachProvider(t *testing.T) {
	inner := &countingEmbedder{}
	store := newFakeStore()
	ce := newCache(t, inner, store)
	ctx := context.Background()

	if _, err := ce.Embed(ctx, "cached"); err != nil {
		t.Fatalf("Embed: %v", err)
	}

	texts := []string{"resume", "cached", "resume", "jd"}
	res, err := ce.BatchEmbed(ctx, texts)
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}

	if len(inner.batch) != 1 {
		t.Fatalf("batch calls = %d, want 1", len(inner.batch))
	}
	if got := strings.Join(inner.batch[0], ","); got != "resume,jd" {
		t.Errorf("provider saw %q, want %q", got, "resume,jd")
	}
	if res.TotalTokens != 6 {
		t.Errorf("TotalTokens = %d, want 6", res.TotalTokens)
	}
	for i, text := range texts {
		if len(res.Embeddings[i]) != 2 || res.Embeddings[i][0] != float32(len(text)) {
			t.Errorf("embedding[%d] = %v, want vector for %q", i, res.Embeddings[i], text)
		}
	}
}

func TestBatchEmbed_AllHitsSkipProvider(t *testing.T) {
	inner := &countingEmbedder{}
	ce := newCache(t, inner, newFakeStore())
	ctx := context.Background()

	if _, err := ce.BatchEmbed(ctx, []string{"a", "bb"}); err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}
	res, err := ce.BatchEmbed(ctx, []string{"bb", "a", "bb"})
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}
	if len(inner.batch) != 1 {
		t.Errorf("batch calls = %d, want 1", len(inner.batch))
	}
	if res.TotalTokens != 0 {
		t.Errorf("TotalTokens = %d, want 0", res.TotalTokens)
	}
	if res.Embeddings[2][0] != 2 {
		t.Errorf("duplicate hit not filled: %v", res.Embeddings)
	}
}

func TestBatchEmbed_InnerError(t *testing.T) {
	cause := errors.New("upstream 500")
	ce := newCache(t, &countingEmbedder{err: cause}, newFakeStore())

	_, err := ce.BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestBatchEmbed_Empty(t *testing.T) {
	inner := &countingEmbedder{}
	res, err := newCache(t, inner, newFakeStore()).BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}
	if len(res.Embeddings) != 0 || len(inner.batch) != 0 {
		t.Errorf("empty batch should be a no-op, got %+v", res)
	}
}

func TestEmbed_CountsLookups(t *testing.T) {
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_emb_cache_total"}, []string{"result"})
	ce := New(&countingEmbedder{}, newFakeStore(), Config{Model: "m"}, lookups, zap.NewNop())

	for range 3 {
		if _, err := ce.Embed(context.Background(), "same"); err != nil {
			t.Fatalf("Embed: %v", err)
		}
	}
	if got := testutil.ToFloat64(lookups.WithLabelValues("miss")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(lookups.WithLabelValues("hit")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
}
