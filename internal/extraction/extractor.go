// Package extraction converts raw document bytes into plain text.
package extraction

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/resumatch/internal/errors"
	"github.com/gcbaptista/resumatch/internal/extraction/docx"
	"github.com/gcbaptista/resumatch/internal/extraction/ocr"
	"github.com/gcbaptista/resumatch/internal/logger"
)

// ErrInvalidUTF8 is returned when a plain-text payload is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("payload is not valid UTF-8")

// ErrNoRecognizer is returned for image and PDF formats when no OCR backend is configured.
var ErrNoRecognizer = errors.New("no OCR recognizer configured")

// DocumentReader returns the paragraphs of a word-processor document in order.
type DocumentReader interface {
	Paragraphs(data []byte) ([]string, error)
}

type strategy func(ctx context.Context, data []byte) (string, error)

// Extractor dispatches on the declared format to an OCR recognizer, a document reader
// or a plain UTF-8 decode.
type Extractor struct {
	recognizer ocr.Recognizer
	reader     DocumentReader
	strategies map[Format]strategy
	logger     *zap.Logger
}

// NewExtractor creates an extractor. A nil reader uses the built-in DOCX reader;
// a nil recognizer makes OCR-backed formats fail with ErrNoRecognizer.
func NewExtractor(recognizer ocr.Recognizer, reader DocumentReader, log *zap.Logger) *Extractor {
	if reader == nil {
		reader = docx.NewReader()
	}
	e := &Extractor{
		recognizer: recognizer,
		reader:     reader,
		logger:     logger.OrNop(log),
	}
	e.strategies = map[Format]strategy{
		FormatPDF:  e.recognize,
		FormatJPG:  e.recognize,
		FormatJPEG: e.recognize,
		FormatPNG:  e.recognize,
		FormatDOCX: e.readDocument,
		FormatTXT:  decodeText,
	}
	return e
}

// ExtractText returns the text of data interpreted as formatTag. Unknown tags yield an
// empty string and no error. Failures are returned as *errors.ExtractionError.
func (e *Extractor) ExtractText(ctx context.Context, data []byte, formatTag string) (string, error) {
	return e.extract(ctx, "", data, formatTag)
}

// ExtractKey is ExtractText with the format taken from the extension of key; errors
// carry the key.
func (e *Extractor) ExtractKey(ctx context.Context, key string, data []byte) (string, error) {
	return e.extract(ctx, key, data, string(FormatFromKey(key)))
}

func (e *Extractor) extract(ctx context.Context, key string, data []byte, formatTag string) (string, error) {
	format := ParseFormat(formatTag)
	run, ok := e.strategies[format]
	if !ok {
		e.logger.Debug("Skipping extraction of unsupported format",
			zap.String("key", key),
			zap.String("format", formatTag))
		return "", nil
	}

	text, err := run(ctx, data)
	if err != nil {
		return "", internalErrors.NewExtractionError(key, string(format), err)
	}

	e.logger.Debug("Extracted text",
		zap.String("key", key),
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
		zap.Int("chars", len(text)))
	return text, nil
}

func (e *Extractor) recognize(ctx context.Context, data []byte) (string, error) {
	if e.recognizer == nil {
		return "", ErrNoRecognizer
	}
	lines, err := e.recognizer.DetectLines(ctx, data)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, " "), nil
}

func (e *Extractor) readDocument(_ context.Context, data []byte) (string, error) {
	paragraphs, err := e.reader.Paragraphs(data)
	if err != nil {
		return "", err
	}
	kept := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, " "), nil
}

func decodeText(_ context.Context, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}
