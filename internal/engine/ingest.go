package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/resumatch/internal/blobstore"
	internalErrors "github.com/gcbaptista/resumatch/internal/errors"
	"github.com/gcbaptista/resumatch/internal/extraction"
	"github.com/gcbaptista/resumatch/internal/logger"
	"github.com/gcbaptista/resumatch/model"
)

// Ingest stores an uploaded document and hands its enrichment to the background trigger.
// The returned result carries a preview of the extracted text. Extraction failures and an
// exhausted trigger quota are reported as warnings; the payload is stored regardless.
func (e *Engine) Ingest(ctx context.Context, key string, data []byte) (*model.IngestResult, error) {
	return e.ingest(ctx, key, data, false)
}

// IngestSync is Ingest with enrichment run inline instead of on a background job.
func (e *Engine) IngestSync(ctx context.Context, key string, data []byte) (*model.IngestResult, error) {
	return e.ingest(ctx, key, data, true)
}

func (e *Engine) ingest(ctx context.Context, key string, data []byte, inline bool) (*model.IngestResult, error) {
	if err := validateUpload(key, data); err != nil {
		return nil, err
	}

	// Replacing a blob only charges the growth.
	size := int64(len(data))
	delta := size
	if previous, err := e.blobs.Size(ctx, key); err == nil {
		delta -= previous
	}
	if delta > 0 {
		if err := e.quota.Reserve(model.ResourceStorageBytes, delta); err != nil {
			return nil, err
		}
	}

	result := &model.IngestResult{
		Key:    key,
		Format: string(extraction.FormatFromKey(key)),
		Size:   size,
	}

	text, extractErr := e.extractor.ExtractKey(ctx, key, data)
	if extractErr != nil {
		e.logger.Warn("Extraction failed during upload, storing document without preview",
			zap.String("key", key), zap.Error(extractErr))
		result.Warnings = append(result.Warnings, extractErr.Error())
	} else {
		result.Preview = preview(text, e.settings.PreviewLength)
	}

	if err := e.blobs.Put(ctx, key, data); err != nil {
		if delta > 0 {
			e.quota.Release(model.ResourceStorageBytes, delta)
		}
		return nil, fmt.Errorf("failed to store document '%s': %w", key, err)
	}
	if delta < 0 {
		e.quota.Release(model.ResourceStorageBytes, -delta)
	}

	if inline && extractErr == nil {
		if err := e.putRecord(ctx, e.buildRecord(key, text)); err != nil {
			return nil, err
		}
		return result, nil
	}

	// The new payload supersedes any record built from the previous one.
	if err := e.dropRecord(ctx, key); err != nil {
		return nil, err
	}
	if inline {
		return result, nil
	}

	jobID, err := e.trigger.Trigger(ctx, key)
	switch {
	case errors.Is(err, internalErrors.ErrCapacity):
		e.logger.Warn("Enrichment not triggered", zap.String("key", key), zap.Error(err))
		result.Warnings = append(result.Warnings, err.Error())
	case err != nil:
		return nil, fmt.Errorf("failed to trigger enrichment of '%s': %w", key, err)
	default:
		result.JobID = jobID
	}

	e.logger.Info("Document ingested",
		zap.String("key", key),
		zap.Int64("size", size),
		zap.String("job_id", result.JobID),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// Enrich reads a stored payload, extracts its text, sections and skills and persists the
// resulting record under the payload key.
func (e *Engine) Enrich(ctx context.Context, key string) (model.DocumentRecord, error) {
	data, err := e.blobs.Get(ctx, key)
	if err != nil {
		return model.DocumentRecord{}, err
	}
	text, err := e.extractor.ExtractKey(ctx, key, data)
	if err != nil {
		if dropErr := e.dropRecord(ctx, key); dropErr != nil {
			e.logger.Error("Failed to drop superseded record", zap.String("key", key), zap.Error(dropErr))
		}
		return model.DocumentRecord{}, err
	}

	rec := e.buildRecord(key, text)
	if err := e.putRecord(ctx, rec); err != nil {
		return model.DocumentRecord{}, err
	}
	e.logger.Debug("Document enriched",
		zap.String("key", key),
		zap.Int("skills", len(rec.Skills)),
		zap.String("text", logger.TruncateForLog(text, 80)))
	return rec, nil
}

// IngestBatchAsync ingests files on a background job, running up to BatchConcurrency
// ingestions at once with inline enrichment. The job fails if any file fails.
func (e *Engine) IngestBatchAsync(_ context.Context, files []model.UploadedFile) (string, error) {
	if len(files) == 0 {
		return "", internalErrors.NewValidationError("files", "at least one file is required")
	}
	for _, f := range files {
		if err := validateUpload(f.Key, f.Data); err != nil {
			return "", err
		}
	}

	jobID := e.jobs.CreateJob(model.JobTypeIngestBatch, "", map[string]string{
		"operation": "ingest_batch",
		"files":     strconv.Itoa(len(files)),
	})

	err := e.jobs.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return e.executeIngestBatchJob(ctx, job.ID, files)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start batch ingest job: %w", err)
	}
	return jobID, nil
}

func (e *Engine) executeIngestBatchJob(ctx context.Context, jobID string, files []model.UploadedFile) error {
	total := len(files)
	e.jobs.UpdateJobProgress(jobID, 0, total, "Starting batch ingestion")

	var done atomic.Int64
	failures := make([]string, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.settings.BatchConcurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := e.IngestSync(gctx, f.Key, f.Data)
			switch {
			case err != nil:
				failures[i] = fmt.Sprintf("%s: %v", f.Key, err)
			case len(result.Warnings) > 0:
				failures[i] = fmt.Sprintf("%s: %s", f.Key, strings.Join(result.Warnings, "; "))
			}
			n := int(done.Add(1))
			e.jobs.UpdateJobProgress(jobID, n, total, fmt.Sprintf("Ingested %d/%d documents", n, total))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var failed []string
	for _, f := range failures {
		if f != "" {
			failed = append(failed, f)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d documents failed: %s", len(failed), total, strings.Join(failed, "; "))
	}
	return nil
}

// putRecord stamps and stores a record, then persists the memory store.
func (e *Engine) putRecord(ctx context.Context, rec model.DocumentRecord) error {
	rec.IngestedAt = time.Now().UTC()
	if err := e.records.Put(ctx, rec); err != nil {
		return fmt.Errorf("failed to store record '%s': %w", rec.ID, err)
	}
	e.persistRecords()
	return nil
}

// dropRecord removes the record of key, if any, so ranking never scores text the
// stored payload no longer holds.
func (e *Engine) dropRecord(ctx context.Context, key string) error {
	err := e.records.Delete(ctx, key)
	switch {
	case err == nil:
		e.logger.Info("Superseded record dropped", zap.String("key", key))
		e.persistRecords()
		return nil
	case errors.Is(err, internalErrors.ErrDocumentNotFound):
		return nil
	default:
		return fmt.Errorf("failed to drop record '%s': %w", key, err)
	}
}

func validateUpload(key string, data []byte) error {
	if err := blobstore.ValidateKey(key); err != nil {
		return internalErrors.NewValidationError("id", err.Error())
	}
	if len(data) == 0 {
		return internalErrors.NewValidationError("file", "file cannot be empty")
	}
	if format := extraction.FormatFromKey(key); !format.IsSupported() {
		return internalErrors.NewValidationError("id", fmt.Sprintf("unsupported document format for '%s'", key))
	}
	return nil
}

// preview returns text, cut to its first limit runes followed by "..." when longer.
func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
