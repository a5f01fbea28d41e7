package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gcbaptista/resumatch/internal/blobstore"
	internalErrors "github.com/gcbaptista/resumatch/internal/errors"
	"github.com/gcbaptista/resumatch/model"
)

// GetDocument returns the enriched record stored under id.
func (e *Engine) GetDocument(ctx context.Context, id string) (model.DocumentRecord, error) {
	return e.records.Get(ctx, id)
}

// ListDocuments returns summaries of every enriched record in store order.
func (e *Engine) ListDocuments(ctx context.Context) ([]model.DocumentSummary, error) {
	records, err := e.records.ListRecords(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list document records: %w", err)
	}
	summaries := make([]model.DocumentSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, rec.Summary())
	}
	return summaries, nil
}

// DeleteDocument removes both the enriched record and the stored payload of id and
// gives back its storage. It fails with DocumentNotFoundError only if neither exists.
func (e *Engine) DeleteDocument(ctx context.Context, id string) error {
	if blobstore.ValidateKey(id) != nil {
		return internalErrors.NewDocumentNotFoundError(id)
	}
	found := false

	err := e.records.Delete(ctx, id)
	switch {
	case err == nil:
		found = true
		e.persistRecords()
	case !errors.Is(err, internalErrors.ErrDocumentNotFound):
		return fmt.Errorf("failed to delete record '%s': %w", id, err)
	}

	size, sizeErr := e.blobs.Size(ctx, id)
	if sizeErr == nil {
		if err := e.blobs.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete stored document '%s': %w", id, err)
		}
		e.quota.Release(model.ResourceStorageBytes, size)
		found = true
	} else if !errors.Is(sizeErr, internalErrors.ErrDocumentNotFound) {
		return fmt.Errorf("failed to stat stored document '%s': %w", id, sizeErr)
	}

	if !found {
		return internalErrors.NewDocumentNotFoundError(id)
	}
	e.logger.Info("Document deleted", zap.String("id", id))
	return nil
}
