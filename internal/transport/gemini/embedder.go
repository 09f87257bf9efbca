// Package gemini embeds text through the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/metrics"
)

const (
	defaultModel    = "gemini-embedding-001"
	providerName    = "gemini"
	semanticSimTask = "SEMANTIC_SIMILARITY"
)

// Config holds the Gemini embedding settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Logger     *zap.Logger
}

// Embedder calls Models.EmbedContent with the SEMANTIC_SIMILARITY task type.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int
	logger     *zap.Logger
}

// NewEmbedder creates a Gemini embedding provider.
func NewEmbedder(ctx context.Context, cfg *Config) (*Embedder, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required: %w", domain.ErrEmbeddingUnavailable)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{client: client, model: model, dimensions: cfg.Dimensions, logger: logger}, nil
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: vectors[0]}, nil
}

// BatchEmbed implements domain.BatchEmbedder with a single EmbedContent call.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	vectors, err := e.embed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	return domain.BatchEmbeddingResult{Embeddings: vectors}, nil
}

// contentsFor wraps each text in a user content.
// An empty Text is dropped from the JSON part, so "" is sent as a single space.
func contentsFor(texts []string) []*genai.Content {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		if t == "" {
			t = " "
		}
		contents[i] = &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: t}},
		}
	}
	return contents
}

func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := contentsFor(texts)

	cfg := &genai.EmbedContentConfig{TaskType: semanticSimTask}
	if e.dimensions > 0 {
		dims := int32(e.dimensions) //nolint:gosec // validated by config
		cfg.OutputDimensionality = &dims
	}

	start := time.Now()
	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, cfg)
	duration := time.Since(start)

	if err != nil {
		e.recordError("api_error")
		return nil, parseAPIError(err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		e.recordError("count_mismatch")
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs: %w",
			got, len(texts), domain.ErrEmbeddingUnavailable)
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			e.recordError("empty_response")
			return nil, fmt.Errorf("gemini returned empty embedding at %d: %w", i, domain.ErrEmbeddingUnavailable)
		}
		vectors[i] = emb.Values
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(duration.Seconds())

	return vectors, nil
}

func (e *Embedder) recordError(errorType string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, errorType).Inc()
}

// HealthCheck verifies that the configured model is reachable.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.Models.Get(ctx, e.model, nil); err != nil {
		return fmt.Errorf("get model %s: %w", e.model, parseAPIError(err))
	}
	return nil
}

func parseAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini API error %d: %s: %w", apiErr.Code, apiErr.Message, domain.ErrEmbeddingUnavailable)
	}
	return fmt.Errorf("gemini request failed: %w: %w", domain.ErrEmbeddingUnavailable, err)
}
