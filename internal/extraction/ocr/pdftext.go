package ocr

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

// PDFText reads the embedded text layer of PDF files, one line per text row.
// It cannot recognise images or scanned PDFs without a text layer.
type PDFText struct{}

// NewPDFText returns a text-layer recognizer.
func NewPDFText() *PDFText {
	return &PDFText{}
}

// DetectLines implements Recognizer.
func (p *PDFText) DetectLines(ctx context.Context, data []byte) (lines []string, err error) {
	// The pdf package panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			lines, err = nil, fmt.Errorf("read pdf: %v", r)
		}
	}()

	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, fmt.Errorf("%w: not a PDF document", ErrUnsupportedPayload)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", i, err)
		}
		for _, row := range rows {
			var b strings.Builder
			for _, word := range row.Content {
				b.WriteString(word.S)
			}
			if line := strings.TrimSpace(b.String()); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines, nil
}

// PageCount returns the number of pages of a PDF payload, or 1 for anything else.
func PageCount(data []byte) int {
	if !bytes.HasPrefix(data, pdfMagic) {
		return 1
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil || r.NumPage() < 1 {
		return 1
	}
	return r.NumPage()
}
