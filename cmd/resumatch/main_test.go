package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kailas-cloud/resumatch/internal/domain/score"
	analysisuc "github.com/kailas-cloud/resumatch/internal/usecase/analysis"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func writeDOCX(t *testing.T, dir, text string) string {
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

	path := filepath.Join(dir, "cv.docx")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return path
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "test.yaml")
	body := "embedding:\n  provider: hashing\n  dimensions: 128\nlogging:\n  level: error\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "resumatch version: ") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	resume := writeDOCX(t, dir, "Experienced Python developer with SQL and Docker skills")

	out, err := run(t, "analyze",
		"--config", cfgPath, "--env", "local", "--env-file", filepath.Join(dir, "missing.env"),
		"--resume", resume,
		"--jd-text", "Looking for Python developer with SQL experience",
		"--json",
	)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	var got analysisOutput
	if err = json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.LexicalScore != 57.14 {
		t.Errorf("lexical_score = %v, want 57.14", got.LexicalScore)
	}
	if _, err = uuid.Parse(got.ID); err != nil {
		t.Errorf("invalid id %q", got.ID)
	}
	if strings.Join(got.MissingKeywords, ",") != "experience,for,looking" {
		t.Errorf("missing_keywords = %v", got.MissingKeywords)
	}
}

func TestAnalyzeCmd_JDFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	resume := writeDOCX(t, dir, "Go engineer")
	jdPath := filepath.Join(dir, "jd.txt")
	if err := os.WriteFile(jdPath, []byte("Go engineer"), 0o600); err != nil {
		t.Fatalf("write jd: %v", err)
	}

	out, err := run(t, "analyze", "--config", cfgPath, "--env", "local", "--resume", resume, "--jd", jdPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "Verdict:        High") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestAnalyzeCmd_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.txt")
	if err := os.WriteFile(path, []byte("plain"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := run(t, "analyze", "--config", writeConfig(t, dir), "--resume", path, "--jd-text", "go")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestAnalyzeCmd_UnreadableEnvFile(t *testing.T) {
	dir := t.TempDir()
	resume := writeDOCX(t, dir, "Go engineer")

	// A directory exists but cannot be parsed as a dotenv file.
	_, err := run(t, "analyze",
		"--config", writeConfig(t, dir), "--env", "local", "--env-file", dir,
		"--resume", resume, "--jd-text", "go",
	)
	if err == nil || !strings.Contains(err.Error(), "load "+dir) {
		t.Fatalf("expected env file error, got %v", err)
	}
}

func TestAnalyzeCmd_RequiresResume(t *testing.T) {
	if _, err := run(t, "analyze", "--jd-text", "go"); err == nil {
		t.Fatal("expected error without --resume")
	}
}

func TestRenderText(t *testing.T) {
	res := analysisuc.Result{
		ID: uuid.New(),
		Breakdown: score.Breakdown{
			Lexical: 12.346, Semantic: 40, Final: 28.938, Verdict: score.Low, Tip: score.TipLow,
		},
		Missing: []string{"kubernetes", "terraform"},
	}

	var buf bytes.Buffer
	if err := renderText(&buf, res); err != nil {
		t.Fatalf("renderText: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Lexical score:  12.35", "Final score:    28.94", "Verdict:        Low", "kubernetes, terraform"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
