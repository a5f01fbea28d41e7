package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gcbaptista/resumatch/internal/persistence"
	"github.com/gcbaptista/resumatch/model"
	"github.com/gcbaptista/resumatch/store"
)

const (
	documentStoreFile = "document_store.gob"
	usageFile         = "usage.gob"
)

// usageSnapshot is the persisted form of counters that cannot be recomputed from disk.
// Storage usage is not saved; it is measured from the blob store on start.
type usageSnapshot struct {
	Used map[model.Resource]int64
}

var persistedResources = []model.Resource{model.ResourceOCRPages, model.ResourceTriggers}

// loadDocumentStore restores the memory store, starting empty when the file is missing
// or unreadable.
func (e *Engine) loadDocumentStore() *store.DocumentStore {
	dsPath := filepath.Join(e.settings.DataDir, documentStoreFile)
	docStore := store.NewDocumentStore()

	err := persistence.LoadGob(dsPath, docStore)
	switch {
	case err == nil:
		e.logger.Info("Loaded document store", zap.String("path", dsPath), zap.Int("documents", docStore.Len()))
	case errors.Is(err, os.ErrNotExist):
		e.logger.Info("Document store file not found, initializing empty store", zap.String("path", dsPath))
	default:
		e.logger.Warn("Failed to load document store, proceeding with empty store",
			zap.String("path", dsPath), zap.Error(err))
		docStore = store.NewDocumentStore()
	}
	return docStore
}

// persistDocumentStore writes the memory store to disk. It does nothing for other backends.
func (e *Engine) persistDocumentStore() error {
	if e.memStore == nil {
		return nil
	}
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	dsPath := filepath.Join(e.settings.DataDir, documentStoreFile)
	if err := persistence.SaveGob(dsPath, e.memStore); err != nil {
		e.logger.Error("Failed to save document store", zap.String("path", dsPath), zap.Error(err))
		return err
	}
	return nil
}

// persistRecords saves the memory store after a record change. A failed save is logged
// by persistDocumentStore and retried on the next change and on Close; the in-memory
// store stays authoritative, so the change that triggered it is not rolled back.
func (e *Engine) persistRecords() {
	_ = e.persistDocumentStore()
}

func (e *Engine) persistUsage() error {
	report := e.quota.Usage()
	snapshot := usageSnapshot{Used: make(map[model.Resource]int64, len(persistedResources))}
	for _, resource := range persistedResources {
		if usage, ok := report.Get(resource); ok {
			snapshot.Used[resource] = usage.Used
		}
	}

	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	path := filepath.Join(e.settings.DataDir, usageFile)
	if err := persistence.SaveGob(path, snapshot); err != nil {
		e.logger.Error("Failed to save usage", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}

// restoreUsage loads persisted counters and measures storage from the blob store.
func (e *Engine) restoreUsage(ctx context.Context) {
	path := filepath.Join(e.settings.DataDir, usageFile)
	var snapshot usageSnapshot
	if err := persistence.LoadGob(path, &snapshot); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			e.logger.Warn("Failed to load usage, starting from zero", zap.String("path", path), zap.Error(err))
		}
	} else {
		for _, resource := range persistedResources {
			e.quota.Set(resource, snapshot.Used[resource])
		}
	}

	total, err := e.blobs.TotalSize(ctx)
	if err != nil {
		e.logger.Warn("Failed to measure blob storage", zap.Error(err))
		return
	}
	e.quota.Set(model.ResourceStorageBytes, total)
}
