package model

import (
	"time"
)

// JobStatus is the lifecycle state of a background job. Completed, failed and
// cancelled are terminal.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusRunning    JobStatus = "running"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelling JobStatus = "cancelling"
	JobStatusCancelled  JobStatus = "cancelled"
)

// JobType names the work a job performs.
type JobType string

const (
	// JobTypeEnrichDocument extracts, segments and skill-tags one stored payload
	// and writes its record. DocumentKey names the payload.
	JobTypeEnrichDocument JobType = "enrich_document"
	// JobTypeIngestBatch stores and enriches every file of one batch upload.
	// It has no DocumentKey; the file count is in Metadata["files"].
	JobTypeIngestBatch JobType = "ingest_batch"
)

// Job is a background enrichment or batch ingestion. Error holds the failure
// message of a failed job, including every failed document of a batch.
type Job struct {
	ID          string            `json:"id"`
	Type        JobType           `json:"type"`
	Status      JobStatus         `json:"status"`
	DocumentKey string            `json:"document_key,omitempty"`
	Progress    *JobProgress      `json:"progress,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// JobProgress counts processed documents: 0 or 1 for an enrichment, the number of
// ingested files for a batch.
type JobProgress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message,omitempty"`
}

// GetProgressPercentage returns Current/Total as a percentage, 0 when Total is 0.
func (jp *JobProgress) GetProgressPercentage() float64 {
	if jp.Total == 0 {
		return 0
	}
	return float64(jp.Current) / float64(jp.Total) * 100
}
