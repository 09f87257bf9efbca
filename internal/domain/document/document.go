package document

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/resumatch/internal/domain"
)

// Format is the declared document format.
type Format string

// Supported formats.
const (
	PDF  Format = "pdf"
	DOCX Format = "docx"
)

// IsValid checks if the format is one of the supported values.
func (f Format) IsValid() bool {
	return f == PDF || f == DOCX
}

// FormatFromFilename infers the format from the filename extension (case-insensitive).
func FormatFromFilename(name string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	f := Format(ext)
	if !f.IsValid() {
		return "", fmt.Errorf("%q: %w", name, domain.ErrUnsupportedFormat)
	}
	return f, nil
}

// Document is an uploaded resume (immutable value object).
// The byte slice is owned by the document; callers must not mutate it after New.
type Document struct {
	name   string
	format Format
	data   []byte
}

// New creates a Document with an explicit format tag.
// The tag is not validated here so that extraction reports ErrUnsupportedFormat itself.
func New(name string, format Format, data []byte) Document {
	return Document{name: name, format: format, data: data}
}

// FromFile creates a Document whose format is inferred from the filename.
func FromFile(name string, data []byte) (Document, error) {
	f, err := FormatFromFilename(name)
	if err != nil {
		return Document{}, err
	}
	return New(name, f, data), nil
}

// Name returns the original filename.
func (d Document) Name() string { return d.name }

// Format returns the declared format tag.
func (d Document) Format() Format { return d.format }

// Data returns the raw document bytes.
func (d Document) Data() []byte { return d.data }

// Size returns the document size in bytes.
func (d Document) Size() int { return len(d.data) }
