package resumatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/app"
	"github.com/kailas-cloud/resumatch/internal/config"
	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/domain/document"
	"github.com/kailas-cloud/resumatch/internal/domain/score"
	"github.com/kailas-cloud/resumatch/internal/extract"
	analysisuc "github.com/kailas-cloud/resumatch/internal/usecase/analysis"
	embeddinguc "github.com/kailas-cloud/resumatch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/resumatch/internal/usecase/health"
	"github.com/kailas-cloud/resumatch/internal/usecase/semantic"
)

// Analyzer is the resumatch library entry point. Safe for concurrent use.
type Analyzer struct {
	svc      *analysisuc.Service
	health   *healthuc.Service
	embedder *embeddinguc.LazyEmbedder
	obs      *observer
}

// New creates an Analyzer. An embedding provider must be chosen with
// WithEmbedder, WithOpenAI, WithOpenAICompatible, WithGemini or WithHashing.
// No network call is made until the first analysis or Load.
func New(opts ...Option) (*Analyzer, error) {
	cfg := &analyzerConfig{policy: DefaultPolicy()}
	for _, o := range opts {
		o.apply(cfg)
	}

	policy := score.Policy(cfg.policy)
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("resumatch: %w", err)
	}

	var lazy *embeddinguc.LazyEmbedder
	switch {
	case cfg.embedder != nil:
		custom := adaptEmbedder(cfg.embedder)
		if cfg.embedding.Instruction != "" {
			custom = domain.NewInstructionEmbedder(custom, cfg.embedding.Instruction)
		}
		lazy = embeddinguc.NewLazyEmbedder(func(context.Context) (domain.Embedder, error) {
			return custom, nil
		}, nil)
	case cfg.embedding.Provider != "":
		c := config.Config{Embedding: cfg.embedding}
		c.ApplyDefaults()
		lazy = app.BuildEmbedder(c.Embedding, app.CacheConfig{}, zap.NewNop())
	default:
		return nil, errors.New("resumatch: embedder required (use WithEmbedder, WithOpenAI, WithGemini or WithHashing)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		svc:      analysisuc.New(extract.New(nil), semantic.New(lazy), policy, nil),
		health:   healthuc.New(lazy, nil),
		embedder: lazy,
		obs:      obs,
	}, nil
}

// Load initializes the embedding provider now instead of on first use.
// A failed load is permanent: every later call returns ErrEmbeddingUnavailable.
func (a *Analyzer) Load(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { a.obs.observe("load", start, err) }()

	if err = a.embedder.Load(ctx); err != nil {
		return fmt.Errorf("resumatch: %w", err)
	}
	return nil
}

// Analyze scores a resume file against a job description.
// The format is taken from the filename extension (.pdf or .docx, case-insensitive).
// An empty job description is valid and yields a lexical score of 0.
func (a *Analyzer) Analyze(ctx context.Context, filename string, data []byte, jd string) (res Result, err error) {
	start := time.Now()
	defer func() {
		a.obs.observe("analyze", start, err, "filename", filename, "verdict", string(res.Verdict))
	}()

	doc, err := document.FromFile(filename, data)
	if err != nil {
		return Result{}, fmt.Errorf("resumatch: %w", err)
	}

	r, err := a.svc.Analyze(ctx, doc, jd)
	if err != nil {
		return Result{}, fmt.Errorf("resumatch: %w", err)
	}

	res = Result{
		ID:              r.ID.String(),
		LexicalScore:    r.Breakdown.Lexical,
		SemanticScore:   r.Breakdown.Semantic,
		FinalScore:      r.Breakdown.Final,
		Verdict:         Verdict(r.Breakdown.Verdict),
		Tip:             r.Breakdown.Tip,
		MatchedKeywords: r.Matched,
		MissingKeywords: r.Missing,
		TextLength:      r.TextLength,
	}
	a.obs.verdict(res.Verdict)
	return res, nil
}

// Health checks the embedding provider.
func (a *Analyzer) Health(ctx context.Context) HealthStatus {
	report := a.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	errs := make(map[string]string, len(report.Errors))
	for k, err := range report.Errors {
		errs[k] = err.Error()
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
		Errors: errs,
	}
}
