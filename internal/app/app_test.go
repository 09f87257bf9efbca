package app

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/resumatch/internal/config"
	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/domain/document"
	"github.com/kailas-cloud/resumatch/internal/domain/score"
	healthuc "github.com/kailas-cloud/resumatch/internal/usecase/health"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body string
	for _, p := range paragraphs {
		body += `<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`
	}

	files := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`},
		{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			t.Fatalf("zip create %s: %v", f.name, err)
		}
		if _, err := w.Write([]byte(f.content)); err != nil {
			t.Fatalf("zip write %s: %v", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func hashingConfig() config.Config {
	cfg := config.Config{
		Embedding: config.EmbeddingConfig{Provider: config.ProviderHashing, Dimensions: 256, Preload: true},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestNew_HashingPipeline(t *testing.T) {
	a, err := New(context.Background(), hashingConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	doc, err := document.FromFile("cv.docx", buildDOCX(t, "Experienced Python developer", "with SQL and Docker skills"))
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}

	res, err := a.Analysis.Analyze(context.Background(), doc, "Looking for Python developer with SQL experience")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got := score.Round2(res.Breakdown.Lexical); got != 57.14 {
		t.Errorf("lexical = %v, want 57.14", got)
	}
	if res.Breakdown.Semantic <= 0 || res.Breakdown.Semantic > 100 {
		t.Errorf("semantic = %v, want in (0, 100]", res.Breakdown.Semantic)
	}
	if res.Breakdown.Verdict == "" {
		t.Error("expected a verdict")
	}
}

func TestNew_SelfSimilarity(t *testing.T) {
	a, err := New(context.Background(), hashingConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	doc, err := document.FromFile("cv.docx", buildDOCX(t, "Go engineer building distributed systems"))
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}

	res, err := a.Analysis.Analyze(context.Background(), doc, "Go engineer building distributed systems")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := score.Round2(res.Breakdown.Final); got != 100 {
		t.Errorf("final = %v, want 100", got)
	}
	if res.Breakdown.Verdict != score.High {
		t.Errorf("verdict = %s, want High", res.Breakdown.Verdict)
	}
}

func TestNew_UnknownProviderFailsOnPreload(t *testing.T) {
	cfg := hashingConfig()
	cfg.Embedding.Provider = "word2vec"

	_, err := New(context.Background(), cfg, nil)
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestNew_LazyFailureIsReportedPerRequest(t *testing.T) {
	cfg := hashingConfig()
	cfg.Embedding.Provider = "word2vec"
	cfg.Embedding.Preload = false

	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	doc, _ := document.FromFile("cv.docx", buildDOCX(t, "Go"))
	_, err = a.Analysis.Analyze(context.Background(), doc, "Go")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}

	if report := a.Health.Check(context.Background()); report.Status != healthuc.Unhealthy {
		t.Errorf("health = %s, want error", report.Status)
	}
}

func TestHandler_Health(t *testing.T) {
	a, err := New(context.Background(), hashingConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rr := httptest.NewRecorder()
	a.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestBuildEmbedder_InstructionAndCache(t *testing.T) {
	store := newMemStore()
	emb := BuildEmbedder(config.EmbeddingConfig{
		Provider:    config.ProviderHashing,
		Model:       "feature-hashing",
		Dimensions:  32,
		Instruction: "query: ",
	}, CacheConfig{Store: store}, nil)

	first, err := emb.Embed(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(first.Embedding) != 32 {
		t.Fatalf("dims = %d, want 32", len(first.Embedding))
	}
	if store.sets != 1 {
		t.Errorf("store sets = %d, want 1", store.sets)
	}

	if _, err = emb.Embed(context.Background(), "golang"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if store.hits != 1 {
		t.Errorf("store hits = %d, want 1", store.hits)
	}
}
