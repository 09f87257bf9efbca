package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/resumatch/internal/domain/score"
	analysisuc "github.com/kailas-cloud/resumatch/internal/usecase/analysis"
)

type analysisOutput struct {
	ID              string   `json:"id"`
	LexicalScore    float64  `json:"lexical_score"`
	SemanticScore   float64  `json:"semantic_score"`
	FinalScore      float64  `json:"final_score"`
	Verdict         string   `json:"verdict"`
	Tip             string   `json:"tip"`
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
}

func toOutput(res analysisuc.Result) analysisOutput {
	b := res.Breakdown
	out := analysisOutput{
		ID:              res.ID.String(),
		LexicalScore:    score.Round2(b.Lexical),
		SemanticScore:   score.Round2(b.Semantic),
		FinalScore:      score.Round2(b.Final),
		Verdict:         string(b.Verdict),
		Tip:             b.Tip,
		MatchedKeywords: res.Matched,
		MissingKeywords: res.Missing,
	}
	if out.MatchedKeywords == nil {
		out.MatchedKeywords = []string{}
	}
	if out.MissingKeywords == nil {
		out.MissingKeywords = []string{}
	}
	return out
}

func renderJSON(w io.Writer, res analysisuc.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toOutput(res)); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func renderText(w io.Writer, res analysisuc.Result) error {
	o := toOutput(res)
	_, err := fmt.Fprintf(w,
		"Lexical score:  %.2f\nSemantic score: %.2f\nFinal score:    %.2f\nVerdict:        %s\nTip:            %s\n",
		o.LexicalScore, o.SemanticScore, o.FinalScore, o.Verdict, o.Tip,
	)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if len(o.MissingKeywords) > 0 {
		if _, err = fmt.Fprintf(w, "Missing:        %s\n", strings.Join(o.MissingKeywords, ", ")); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return nil
}
