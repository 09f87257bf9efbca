// Package analysis runs the resume relevance pipeline:
// extract, lexical coverage, semantic similarity, fusion.
package analysis

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain/document"
	"github.com/kailas-cloud/resumatch/internal/domain/score"
	"github.com/kailas-cloud/resumatch/internal/logger"
	"github.com/kailas-cloud/resumatch/internal/metrics"
	"github.com/kailas-cloud/resumatch/internal/usecase/lexical"
)

// Result is one scored resume.
type Result struct {
	ID         uuid.UUID
	Breakdown  score.Breakdown
	Matched    []string
	Missing    []string
	TextLength int // extracted characters
}

// Service scores resumes against job descriptions. Safe for concurrent use.
type Service struct {
	extractor Extractor
	semantic  SemanticScorer
	policy    score.Policy
	logger    *zap.Logger
}

// New creates an analysis service. The policy must already be validated.
func New(extractor Extractor, semantic SemanticScorer, policy score.Policy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		extractor: extractor,
		semantic:  semantic,
		policy:    policy,
		logger:    logger,
	}
}

// Policy returns the scoring policy in use.
func (s *Service) Policy() score.Policy { return s.policy }

// Analyze scores doc against jdText.
// Extraction errors are returned before any embedding work starts.
func (s *Service) Analyze(ctx context.Context, doc document.Document, jdText string) (Result, error) {
	start := time.Now()
	log := logger.FromContextOr(ctx, s.logger)

	res, err := s.analyze(ctx, doc, jdText)
	dur := time.Since(start)
	metrics.AnalysisDuration.Observe(dur.Seconds())

	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("error", "").Inc()
		log.Warn("analysis failed",
			zap.String("filename", doc.Name()),
			zap.String("format", string(doc.Format())),
			zap.Int("bytes", doc.Size()),
			zap.Duration("duration", dur),
			zap.Error(err),
		)
		return Result{}, err
	}

	b := res.Breakdown
	metrics.AnalysesTotal.WithLabelValues("ok", string(b.Verdict)).Inc()
	metrics.AnalysisScore.WithLabelValues("lexical").Observe(b.Lexical)
	metrics.AnalysisScore.WithLabelValues("semantic").Observe(b.Semantic)
	metrics.AnalysisScore.WithLabelValues("final").Observe(b.Final)

	log.Info("analysis completed",
		zap.String("analysis_id", res.ID.String()),
		zap.String("format", string(doc.Format())),
		zap.Int("text_length", res.TextLength),
		zap.Float64("lexical", score.Round2(b.Lexical)),
		zap.Float64("semantic", score.Round2(b.Semantic)),
		zap.Float64("final", score.Round2(b.Final)),
		zap.String("verdict", string(b.Verdict)),
		zap.Duration("duration", dur),
	)
	return res, nil
}

func (s *Service) analyze(ctx context.Context, doc document.Document, jdText string) (Result, error) {
	resumeText, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return Result{}, fmt.Errorf("analyze: %w", err)
	}

	lex := lexical.Match(resumeText, jdText)

	sem, err := s.semantic.Score(ctx, resumeText, jdText)
	if err != nil {
		return Result{}, fmt.Errorf("analyze: %w", err)
	}

	return Result{
		ID:         uuid.New(),
		Breakdown:  s.policy.Fuse(lex.Score, sem),
		Matched:    lex.Matched,
		Missing:    lex.Missing,
		TextLength: utf8.RuneCountInString(resumeText),
	}, nil
}
