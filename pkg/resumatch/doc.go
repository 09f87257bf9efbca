// Package resumatch scores how well a resume matches a job description.
//
// A resume (PDF or DOCX bytes) is reduced to plain text, compared with the
// job description by keyword coverage and by embedding similarity, and the
// two scores are fused into a final score with a Low/Medium/High verdict.
//
//	a, err := resumatch.New(resumatch.WithOpenAI(os.Getenv("OPENAI_API_KEY"), ""))
//	if err != nil {
//	    return err
//	}
//	res, err := a.Analyze(ctx, "cv.pdf", data, jobDescription)
//	if errors.Is(err, resumatch.ErrUnsupportedFormat) {
//	    // only .pdf and .docx are accepted
//	}
//	fmt.Printf("%.2f %s\n", res.FinalScore, res.Verdict)
//
// The embedding provider is created on first use. Call Analyzer.Load to
// fail fast at startup instead.
package resumatch
