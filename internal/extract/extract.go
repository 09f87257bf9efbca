// Package extract turns PDF and DOCX uploads into plain text.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/domain"
	"github.com/kailas-cloud/resumatch/internal/domain/document"
	"github.com/kailas-cloud/resumatch/internal/metrics"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeZIP  = "application/zip"
)

// Extractor converts documents to plain text. Safe for concurrent use.
type Extractor struct {
	logger *zap.Logger
}

// New creates an Extractor.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract returns the plain text of doc.
// PDF pages are concatenated without a separator; every DOCX paragraph is followed by a newline.
// Zero-length input yields an empty string for either format.
func (e *Extractor) Extract(ctx context.Context, doc document.Document) (string, error) {
	format := doc.Format()
	if !format.IsValid() {
		return "", fmt.Errorf("extract %q (format %q): %w", doc.Name(), format, domain.ErrUnsupportedFormat)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	if doc.Size() == 0 {
		return "", nil
	}

	start := time.Now()
	text, err := e.extract(format, doc.Data())
	metrics.ExtractionDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues(string(format), "error").Inc()
		e.logger.Warn("extraction failed",
			zap.String("filename", doc.Name()),
			zap.String("format", string(format)),
			zap.Int("bytes", doc.Size()),
			zap.Error(err),
		)
		return "", fmt.Errorf("extract %q: %w", doc.Name(), err)
	}

	metrics.ExtractionsTotal.WithLabelValues(string(format), "ok").Inc()
	e.logger.Debug("extraction completed",
		zap.String("format", string(format)),
		zap.Int("bytes", doc.Size()),
		zap.Int("chars", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return text, nil
}

func (e *Extractor) extract(format document.Format, data []byte) (string, error) {
	if err := sniff(format, data); err != nil {
		return "", err
	}
	switch format {
	case document.PDF:
		return extractPDF(data)
	case document.DOCX:
		return extractDOCX(data)
	default:
		return "", domain.ErrUnsupportedFormat
	}
}

// sniff rejects content whose detected type does not match the declared format.
func sniff(format document.Format, data []byte) error {
	detected := mimetype.Detect(data)

	var accepted []string
	switch format {
	case document.PDF:
		accepted = []string{mimePDF}
	case document.DOCX:
		accepted = []string{mimeDOCX, mimeZIP}
	}

	for m := detected; m != nil; m = m.Parent() {
		for _, want := range accepted {
			if m.Is(want) {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: content detected as %s, declared %s", domain.ErrExtraction, detected.String(), format)
}
