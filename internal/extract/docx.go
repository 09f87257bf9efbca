package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/kailas-cloud/resumatch/internal/domain"
)

// extractDOCX returns paragraph texts, each followed by a newline.
func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: docx: %w", domain.ErrExtraction, err)
	}
	defer func() { _ = doc.Close() }()

	text, err := paragraphs(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("%w: docx body: %w", domain.ErrExtraction, err)
	}
	return text, nil
}

// paragraphs walks WordprocessingML and renders w:p elements as lines.
// w:t contributes text and w:br or w:cr a line break. A w:tab outside
// tab-stop definitions becomes a tab.
func paragraphs(body string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(body))

	var (
		out    strings.Builder
		para   strings.Builder
		inText int
		inTabs int
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText++
			case "tabs":
				inTabs++
			case "tab":
				if inTabs == 0 {
					para.WriteByte('\t')
				}
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				if inText > 0 {
					inText--
				}
			case "tabs":
				if inTabs > 0 {
					inTabs--
				}
			case "p":
				out.WriteString(para.String())
				out.WriteByte('\n')
				para.Reset()
			}
		case xml.CharData:
			if inText > 0 {
				para.Write(t)
			}
		}
	}
	return out.String(), nil
}
