package resumatch

import "github.com/kailas-cloud/resumatch/internal/domain/score"

// Verdict is the coarse suitability bucket of a final score.
type Verdict string

// Verdict values.
const (
	VerdictHigh   Verdict = Verdict(score.High)
	VerdictMedium Verdict = Verdict(score.Medium)
	VerdictLow    Verdict = Verdict(score.Low)
)

// Result is one scored resume. Scores are unrounded; round for display.
type Result struct {
	ID              string
	LexicalScore    float64
	SemanticScore   float64
	FinalScore      float64
	Verdict         Verdict
	Tip             string
	MatchedKeywords []string
	MissingKeywords []string
	TextLength      int
}

// Policy holds fusion weights and verdict thresholds.
// Weights lie in [0,1] and sum to 1; LowThreshold must be below HighThreshold.
type Policy struct {
	LexicalWeight  float64
	SemanticWeight float64
	LowThreshold   float64
	HighThreshold  float64
}

// DefaultPolicy returns 0.4 lexical / 0.6 semantic with thresholds 50 and 75.
func DefaultPolicy() Policy {
	p := score.DefaultPolicy()
	return Policy(p)
}

// HealthStatus represents the aggregated health of the analyzer.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
	Errors map[string]string // component → failure message, failing checks only
}
