package document

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/resumatch/internal/domain"
)

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"resume.pdf", PDF, false},
		{"Resume.PDF", PDF, false},
		{"cv.final.docx", DOCX, false},
		{"/tmp/upload/CV.Docx", DOCX, false},
		{"resume.txt", "", true},
		{"resume.doc", "", true},
		{"resume", "", true},
		{"pdf", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FormatFromFilename(tc.name)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrUnsupportedFormat) {
					t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("FormatFromFilename(%q) = %q, want %q", tc.name, got, tc.want)
			}
		})
	}
}

func TestFormat_IsValid(t *testing.T) {
	if !PDF.IsValid() || !DOCX.IsValid() {
		t.Error("pdf and docx must be valid")
	}
	if Format("txt").IsValid() {
		t.Error("txt must not be valid")
	}
	if Format("").IsValid() {
		t.Error("empty format must not be valid")
	}
}

func TestFromFile(t *testing.T) {
	doc, err := FromFile("cv.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Format() != PDF {
		t.Errorf("Format() = %q", doc.Format())
	}
	if doc.Name() != "cv.pdf" {
		t.Errorf("Name() = %q", doc.Name())
	}
	if doc.Size() != 8 {
		t.Errorf("Size() = %d", doc.Size())
	}

	if _, err := FromFile("cv.txt", nil); !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestNew_KeepsTagUnvalidated(t *testing.T) {
	doc := New("notes.txt", Format("txt"), []byte("hello"))
	if doc.Format().IsValid() {
		t.Error("expected invalid format to be preserved")
	}
}
