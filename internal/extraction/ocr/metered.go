package ocr

import (
	"context"

	"github.com/gcbaptista/resumatch/model"
)

// Reserver is the part of a quota tracker a metered recognizer needs.
type Reserver interface {
	Reserve(resource model.Resource, n int64) error
}

// Metered charges OCR pages before delegating to the wrapped recognizer. When the
// quota is exhausted the capacity error is returned and the recognizer is not called.
type Metered struct {
	next  Recognizer
	quota Reserver
}

// NewMetered wraps next with page accounting against quota.
func NewMetered(next Recognizer, quota Reserver) *Metered {
	return &Metered{next: next, quota: quota}
}

// DetectLines implements Recognizer.
func (m *Metered) DetectLines(ctx context.Context, data []byte) ([]string, error) {
	if err := m.quota.Reserve(model.ResourceOCRPages, int64(PageCount(data))); err != nil {
		return nil, err
	}
	return m.next.DetectLines(ctx, data)
}
