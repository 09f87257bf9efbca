package resumatch

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/resumatch/internal/config"
)

// Option configures the Analyzer.
type Option interface {
	apply(*analyzerConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*analyzerConfig)

func (f optionFunc) apply(c *analyzerConfig) { f(c) }

type analyzerConfig struct {
	embedder  Embedder
	embedding config.EmbeddingConfig

	policy Policy

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEmbedder sets a caller-provided embedding provider.
// It takes precedence over WithOpenAI, WithGemini and WithHashing.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *analyzerConfig) {
		c.embedder = e
	})
}

// WithOpenAI embeds through the OpenAI API. An empty model selects text-embedding-3-small.
func WithOpenAI(apiKey, model string) Option {
	return optionFunc(func(c *analyzerConfig) {
		c.embedding.Provider = config.ProviderOpenAI
		c.embedding.APIKey = apiKey
		c.embedding.Model = model
	})
}

// WithOpenAICompatible embeds through any OpenAI-compatible endpoint (vLLM, Ollama, Azure).
func WithOpenAICompatible(baseURL, apiKey, model string) Option {
	return optionFunc(func(c *analyzerConfig) {
		c.embedding.Provider = config.ProviderOpenAI
		c.embedding.BaseURL = baseURL
		c.embedding.APIKey = apiKey
		c.embedding.Model = model
	})
}

// WithGemini embeds through the Gemini API. An empty model selects gemini-embedding-001.
func WithGemini(apiKey, model string) Option {
	return optionFunc(func(c *analyzerConfig) {
		c.embedding.Provider = config.ProviderGemini
		c.embedding.APIKey = apiKey
		c.embedding.Model = model
	})
}

// WithHashing uses the offline feature-hashing embedder.
// It needs no network and suits tests and local runs; dims <= 0 selects 512.
func WithHashing(dims int) Option {
	return optionFunc(func(c *analyzerConfig) {
		c.embedding.Provider = config.ProviderHashing
		c.embedding.Dimensions = dims
	})
}

// WithDimensions requests a specific embedding size from providers that support it.
func WithDimensions(dims int) Option {
	return optionFunc(func(c *analyzerConfig) {
		c.embedding.Dimensions = dims
	})
}

// WithInstruction prepends an instruction to every embedded text.
// Asymmetric models (e5, bge, Qwen3) expect one.
func WithInstruction(instruction string) Option {
	return optionFunc(func(c *analyzerConfig) {
		c.embedding.Instruction = instruction
	})
}

// WithMaxInputTokens truncates inputs to n tokens before embedding. Zero disables truncation.
func WithMaxInputTokens(n int) Option {
	return optionFunc(func(c *analyzerConfig) {
		c.embedding.MaxInputTokens = n
	})
}

// WithPolicy overrides fusion weights and verdict thresholds.
// The policy is validated by New.
func WithPolicy(p Policy) Option {
	return optionFunc(func(c *analyzerConfig) {
		c.policy = p
	})
}

// WithLogger enables structured logging of analyses.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *analyzerConfig) {
		c.logger = l
	})
}

// WithPrometheus registers analyzer metrics (operation counts, durations, verdicts)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *analyzerConfig) {
		c.metricsReg = reg
	})
}
