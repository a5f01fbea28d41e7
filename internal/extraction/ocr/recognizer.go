// Package ocr provides line recognizers for scanned documents and images.
package ocr

import (
	"context"
	"errors"
)

// ErrUnsupportedPayload is returned when a recognizer cannot interpret the bytes it was given.
var ErrUnsupportedPayload = errors.New("unsupported payload for recognizer")

// Recognizer returns the text lines of a document in reading order.
type Recognizer interface {
	DetectLines(ctx context.Context, data []byte) ([]string, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, data []byte) ([]string, error)

// DetectLines calls f.
func (f RecognizerFunc) DetectLines(ctx context.Context, data []byte) ([]string, error) {
	return f(ctx, data)
}
