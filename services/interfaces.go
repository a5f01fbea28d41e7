package services

import (
	"context"

	"github.com/gcbaptista/resumatch/internal/blobstore"
	"github.com/gcbaptista/resumatch/internal/jobs"
	"github.com/gcbaptista/resumatch/model"
)

// CorpusSource returns persisted records in a stable order, at most limit of them
// (all when limit <= 0).
type CorpusSource interface {
	ListRecords(ctx context.Context, limit int) ([]model.DocumentRecord, error)
}

// RecordStore persists enriched records. Put replaces any record with the same ID.
type RecordStore interface {
	CorpusSource
	Put(ctx context.Context, rec model.DocumentRecord) error
	Get(ctx context.Context, id string) (model.DocumentRecord, error)
	Delete(ctx context.Context, id string) error
}

// BlobStore keeps raw uploaded payloads by key.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Size(ctx context.Context, key string) (int64, error)
	List(ctx context.Context, limit int) ([]blobstore.Object, error)
	TotalSize(ctx context.Context) (int64, error)
}

// TextExtractor turns a stored payload into plain text using the format implied by its key.
type TextExtractor interface {
	ExtractKey(ctx context.Context, key string, data []byte) (string, error)
}

// EnrichmentTrigger hands a stored document to background enrichment and returns the
// job ID without waiting for it.
type EnrichmentTrigger interface {
	Trigger(ctx context.Context, documentKey string) (string, error)
}

// Ranker scores the current corpus against a query.
type Ranker interface {
	Rank(ctx context.Context, query string, limit int) (*model.RankResult, error)
}

// DocumentService is the document side of the service: ingestion and record access.
type DocumentService interface {
	Ingest(ctx context.Context, key string, data []byte) (*model.IngestResult, error)
	IngestSync(ctx context.Context, key string, data []byte) (*model.IngestResult, error)
	IngestBatchAsync(ctx context.Context, files []model.UploadedFile) (string, error)
	GetDocument(ctx context.Context, id string) (model.DocumentRecord, error)
	ListDocuments(ctx context.Context) ([]model.DocumentSummary, error)
	DeleteDocument(ctx context.Context, id string) error
}

// UsageReporter exposes quota usage.
type UsageReporter interface {
	Usage() model.UsageReport
}

// JobManager defines operations for inspecting background jobs.
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(documentKey string, status *model.JobStatus) []*model.Job
	GetMetrics() jobs.JobMetricsData
}
