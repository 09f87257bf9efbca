// Package score fuses lexical and semantic scores into a verdict.
package score

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/resumatch/internal/domain"
)

// Verdict is the coarse suitability bucket of a final score.
type Verdict string

// Verdict values.
const (
	High   Verdict = "High"
	Medium Verdict = "Medium"
	Low    Verdict = "Low"
)

// Tips shown to the candidate, keyed by verdict.
const (
	TipHigh   = "Great match! Your resume aligns well with the job description."
	TipMedium = "Decent match. Consider adding more keywords and relevant experience from the job description."
	TipLow    = "Low match. Tailor your resume to the job description: mirror its key skills and responsibilities."
)

const weightEpsilon = 1e-9

// Policy holds fusion weights and verdict thresholds.
type Policy struct {
	LexicalWeight  float64
	SemanticWeight float64
	LowThreshold   float64
	HighThreshold  float64
}

// DefaultPolicy returns the 0.4/0.6 weighting with 50/75 thresholds.
func DefaultPolicy() Policy {
	return Policy{
		LexicalWeight:  0.4,
		SemanticWeight: 0.6,
		LowThreshold:   50,
		HighThreshold:  75,
	}
}

// Validate checks that weights lie in [0,1] and sum to 1, and that Low < High.
func (p Policy) Validate() error {
	for name, w := range map[string]float64{
		"lexical_weight":  p.LexicalWeight,
		"semantic_weight": p.SemanticWeight,
	} {
		if math.IsNaN(w) || w < 0 || w > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %v", domain.ErrInvalidInput, name, w)
		}
	}
	if sum := p.LexicalWeight + p.SemanticWeight; math.Abs(sum-1) > weightEpsilon {
		return fmt.Errorf("%w: weights must sum to 1, got %v", domain.ErrInvalidInput, sum)
	}
	if !(p.LowThreshold < p.HighThreshold) {
		return fmt.Errorf("%w: low_threshold (%v) must be below high_threshold (%v)",
			domain.ErrInvalidInput, p.LowThreshold, p.HighThreshold)
	}
	return nil
}

// Classify maps a final score to a verdict. Boundaries belong to the upper bucket.
func (p Policy) Classify(final float64) Verdict {
	switch {
	case final >= p.HighThreshold:
		return High
	case final >= p.LowThreshold:
		return Medium
	default:
		return Low
	}
}

// Fuse combines the component scores into a Breakdown.
func (p Policy) Fuse(lexical, semantic float64) Breakdown {
	final := p.LexicalWeight*lexical + p.SemanticWeight*semantic
	v := p.Classify(final)
	return Breakdown{
		Lexical:  lexical,
		Semantic: semantic,
		Final:    final,
		Verdict:  v,
		Tip:      TipFor(v),
	}
}

// TipFor returns the fixed tip for a verdict.
func TipFor(v Verdict) string {
	switch v {
	case High:
		return TipHigh
	case Medium:
		return TipMedium
	default:
		return TipLow
	}
}

// Breakdown is the result of scoring one resume against one job description.
type Breakdown struct {
	Lexical  float64
	Semantic float64
	Final    float64
	Verdict  Verdict
	Tip      string
}

// Round2 rounds v to two decimals for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
