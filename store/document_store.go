package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"sync"

	internalErrors "github.com/gcbaptista/resumatch/internal/errors"
	"github.com/gcbaptista/resumatch/model"
)

// DocumentStore keeps enriched document records in memory, in ingestion order.
// Re-ingesting an ID replaces the record and moves it to the end.
type DocumentStore struct {
	Mu    sync.RWMutex
	Docs  map[string]model.DocumentRecord // Document ID to record
	Order []string                        // Document IDs, oldest first
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		Docs:  make(map[string]model.DocumentRecord),
		Order: make([]string, 0),
	}
}

// Put stores rec, replacing any record with the same ID.
func (ds *DocumentStore) Put(_ context.Context, rec model.DocumentRecord) error {
	if rec.ID == "" {
		return internalErrors.NewValidationError("id", "document ID cannot be empty")
	}
	rec = normalizeRecord(rec)

	ds.Mu.Lock()
	defer ds.Mu.Unlock()

	if _, exists := ds.Docs[rec.ID]; exists {
		ds.removeFromOrder(rec.ID)
	}
	ds.Docs[rec.ID] = rec
	ds.Order = append(ds.Order, rec.ID)
	return nil
}

// Get returns the record stored under id.
func (ds *DocumentStore) Get(_ context.Context, id string) (model.DocumentRecord, error) {
	ds.Mu.RLock()
	defer ds.Mu.RUnlock()

	rec, ok := ds.Docs[id]
	if !ok {
		return model.DocumentRecord{}, internalErrors.NewDocumentNotFoundError(id)
	}
	return rec, nil
}

// Delete removes the record stored under id.
func (ds *DocumentStore) Delete(_ context.Context, id string) error {
	ds.Mu.Lock()
	defer ds.Mu.Unlock()

	if _, ok := ds.Docs[id]; !ok {
		return internalErrors.NewDocumentNotFoundError(id)
	}
	delete(ds.Docs, id)
	ds.removeFromOrder(id)
	return nil
}

// ListRecords returns up to limit records in ingestion order. A limit of zero or less
// returns every record.
func (ds *DocumentStore) ListRecords(_ context.Context, limit int) ([]model.DocumentRecord, error) {
	ds.Mu.RLock()
	defer ds.Mu.RUnlock()

	n := len(ds.Order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.DocumentRecord, 0, n)
	for _, id := range ds.Order[:n] {
		out = append(out, ds.Docs[id])
	}
	return out, nil
}

// Len returns the number of stored records.
func (ds *DocumentStore) Len() int {
	ds.Mu.RLock()
	defer ds.Mu.RUnlock()
	return len(ds.Docs)
}

// removeFromOrder must be called with the write lock held.
func (ds *DocumentStore) removeFromOrder(id string) {
	for i, existing := range ds.Order {
		if existing == id {
			ds.Order = append(ds.Order[:i], ds.Order[i+1:]...)
			return
		}
	}
}

// normalizeRecord gives a record the shape every stored record has: a non-nil skill
// list and all section keys.
func normalizeRecord(rec model.DocumentRecord) model.DocumentRecord {
	if rec.Skills == nil {
		rec.Skills = []string{}
	}
	rec.Sections = rec.Sections.Complete()
	return rec
}

// gobDocumentStoreData is the gob form of DocumentStore, without the mutex.
type gobDocumentStoreData struct {
	Docs  map[string]model.DocumentRecord
	Order []string
}

// GobEncode implements the gob.GobEncoder interface for DocumentStore.
func (ds *DocumentStore) GobEncode() ([]byte, error) {
	ds.Mu.RLock()
	defer ds.Mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobDocumentStoreData{Docs: ds.Docs, Order: ds.Order}); err != nil {
		return nil, fmt.Errorf("failed to gob encode document store data: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for DocumentStore.
func (ds *DocumentStore) GobDecode(data []byte) error {
	decoded := gobDocumentStoreData{}
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to gob decode document store data: %w", err)
	}

	ds.Mu.Lock()
	defer ds.Mu.Unlock()

	ds.Docs = make(map[string]model.DocumentRecord, len(decoded.Docs))
	ds.Order = make([]string, 0, len(decoded.Order))
	// gob drops empty slices and maps, so restore the stored shape.
	for _, id := range decoded.Order {
		rec, ok := decoded.Docs[id]
		if !ok {
			continue
		}
		ds.Docs[id] = normalizeRecord(rec)
		ds.Order = append(ds.Order, id)
	}
	return nil
}
