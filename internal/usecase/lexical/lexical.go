// Package lexical scores keyword coverage of a job description by a resume.
package lexical

import "github.com/kailas-cloud/resumatch/internal/domain/text"

// Result is the keyword coverage of a job description.
type Result struct {
	// Score is the share of JD tokens present in the resume, 0-100.
	Score float64
	// Matched are JD tokens found in the resume, sorted.
	Matched []string
	// Missing are JD tokens absent from the resume, sorted.
	Missing []string
}

// Score returns 100 * |N(resume) ∩ N(jd)| / max(|N(jd)|, 1).
// The ratio is asymmetric: extra resume vocabulary never lowers it.
func Score(resumeText, jdText string) float64 {
	return Match(resumeText, jdText).Score
}

// Match computes the coverage score together with the matched and missing JD keywords.
func Match(resumeText, jdText string) Result {
	resume := text.Normalize(resumeText)
	jd := text.Normalize(jdText)
	return MatchSets(resume, jd)
}

// MatchSets is Match over already normalized token sets.
func MatchSets(resume, jd text.TokenSet) Result {
	matched := jd.Intersect(resume)
	return Result{
		Score:   100 * float64(matched.Len()) / float64(max(jd.Len(), 1)),
		Matched: matched.Sorted(),
		Missing: jd.Difference(resume).Sorted(),
	}
}
