package resumatch

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// --- stubs ---

type fixedEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
	texts   []string
}

func (f *fixedEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	f.calls++
	f.texts = append(f.texts, text)
	if f.err != nil {
		return EmbeddingResult{}, f.err
	}
	v, ok := f.vectors[text]
	if !ok {
		v = []float32{1, 0}
	}
	return EmbeddingResult{Embedding: v, PromptTokens: 1, TotalTokens: 1}, nil
}

type batchFixedEmbedder struct {
	fixedEmbedder
	batchCalls int
}

func (b *batchFixedEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	b.batchCalls++
	out := BatchEmbeddingResult{}
	for _, t := range texts {
		r, err := b.Embed(ctx, t)
		if err != nil {
			return BatchEmbeddingResult{}, err
		}
		out.Embeddings = append(out.Embeddings, r.Embedding)
	}
	return out, nil
}

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func docx(t *testing.T, text string) []byte {
	t.Helper()
	files := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`},
		{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document ` + wordNS + `><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`},
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err = w.Write([]byte(f.content)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// --- tests ---

func TestNew_RequiresEmbedder(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error without embedder")
	}
}

func TestNew_InvalidPolicy(t *testing.T) {
	_, err := New(WithHashing(0), WithPolicy(Policy{LexicalWeight: 0.7, SemanticWeight: 0.7, LowThreshold: 50, HighThreshold: 75}))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.LexicalWeight != 0.4 || p.SemanticWeight != 0.6 || p.LowThreshold != 50 || p.HighThreshold != 75 {
		t.Errorf("unexpected default policy %+v", p)
	}
}

func TestAnalyze_CustomEmbedder(t *testing.T) {
	// Orthogonal vectors: semantic score 0.
	resume := "Experienced Python developer with SQL and Docker skills"
	jd := "Looking for Python developer with SQL experience"
	emb := &fixedEmbedder{vectors: map[string][]float32{
		resume + "\n": {1, 0},
		jd:            {0, 1},
	}}

	a, err := New(WithEmbedder(emb))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := a.Analyze(context.Background(), "cv.DOCX", docx(t, resume), jd)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	wantLex := 100.0 * 4 / 7
	if math.Abs(res.LexicalScore-wantLex) > 1e-9 {
		t.Errorf("lexical = %v, want %v", res.LexicalScore, wantLex)
	}
	if res.SemanticScore != 0 {
		t.Errorf("semantic = %v, want 0", res.SemanticScore)
	}
	if math.Abs(res.FinalScore-0.4*wantLex) > 1e-9 {
		t.Errorf("final = %v, want %v", res.FinalScore, 0.4*wantLex)
	}
	if res.Verdict != VerdictLow {
		t.Errorf("verdict = %s, want Low", res.Verdict)
	}
	if res.ID == "" {
		t.Error("expected analysis id")
	}
	if emb.calls != 2 {
		t.Errorf("embed calls = %d, want 2", emb.calls)
	}
}

func TestAnalyze_BatchEmbedderUsed(t *testing.T) {
	emb := &batchFixedEmbedder{}
	a, err := New(WithEmbedder(emb), WithInstruction("passage: "))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err = a.Analyze(context.Background(), "cv.docx", docx(t, "go"), "go"); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if emb.batchCalls != 1 {
		t.Errorf("batch calls = %d, want 1", emb.batchCalls)
	}
	for _, text := range emb.texts {
		if !strings.HasPrefix(text, "passage: ") {
			t.Errorf("instruction not applied to %q", text)
		}
	}
}

func TestAnalyze_UnsupportedFormat(t *testing.T) {
	emb := &fixedEmbedder{}
	a, err := New(WithEmbedder(emb))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = a.Analyze(context.Background(), "cv.odt", []byte("x"), "go")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if emb.calls != 0 {
		t.Errorf("embedder called %d times", emb.calls)
	}
}

func TestAnalyze_CorruptDocument(t *testing.T) {
	a, err := New(WithHashing(64))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = a.Analyze(context.Background(), "cv.pdf", []byte("definitely not a pdf"), "go")
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestAnalyze_EmbedderError(t *testing.T) {
	a, err := New(WithEmbedder(&fixedEmbedder{err: errors.New("quota exceeded")}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = a.Analyze(context.Background(), "cv.docx", docx(t, "go"), "go")
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestAnalyze_Hashing(t *testing.T) {
	a, err := New(WithHashing(128))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err = a.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	res, err := a.Analyze(context.Background(), "cv.docx", docx(t, "Senior Go engineer"), "Senior Go engineer")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Verdict != VerdictHigh {
		t.Errorf("verdict = %s, want High (final %v)", res.Verdict, res.FinalScore)
	}
	if h := a.Health(context.Background()); h.Status != "ok" {
		t.Errorf("health = %+v", h)
	}
}

func TestAnalyze_ObserverMetricsAndLogs(t *testing.T) {
	reg := prometheus.NewRegistry()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	a, err := New(WithHashing(64), WithPrometheus(reg), WithLogger(logger))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err = a.Analyze(context.Background(), "cv.docx", docx(t, "go"), "go"); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	_, _ = a.Analyze(context.Background(), "cv.txt", nil, "go")

	if got := testutil.ToFloat64(a.obs.metrics.operations.WithLabelValues("analyze", "ok")); got != 1 {
		t.Errorf("analyze ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(a.obs.metrics.operations.WithLabelValues("analyze", "error")); got != 1 {
		t.Errorf("analyze error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(a.obs.metrics.verdicts.WithLabelValues("High")); got != 1 {
		t.Errorf("verdict High = %v, want 1", got)
	}
	if !strings.Contains(logs.String(), "op=analyze") {
		t.Errorf("expected analyze log line, got %q", logs.String())
	}
}

func TestNew_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(WithHashing(0), WithPrometheus(reg)); err != nil {
		t.Fatalf("first New: %v", err)
	}
	if _, err := New(WithHashing(0), WithPrometheus(reg)); err != nil {
		t.Fatalf("second New should reuse collectors: %v", err)
	}
}
