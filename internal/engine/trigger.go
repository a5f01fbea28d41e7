package engine

import (
	"context"
	"fmt"

	"github.com/gcbaptista/resumatch/model"
)

// jobTrigger enriches stored documents on the engine's job manager. Each accepted
// trigger is charged against the trigger quota.
type jobTrigger struct {
	engine *Engine
}

// Trigger implements services.EnrichmentTrigger.
func (t *jobTrigger) Trigger(_ context.Context, documentKey string) (string, error) {
	e := t.engine
	if err := e.quota.Reserve(model.ResourceTriggers, 1); err != nil {
		return "", err
	}

	jobID := e.jobs.CreateJob(model.JobTypeEnrichDocument, documentKey, map[string]string{
		"operation": "enrich_document",
	})

	err := e.jobs.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		e.jobs.UpdateJobProgress(job.ID, 0, 1, "Extracting text")
		if _, err := e.Enrich(ctx, job.DocumentKey); err != nil {
			return err
		}
		e.jobs.UpdateJobProgress(job.ID, 1, 1, "Document enriched")
		return nil
	})
	if err != nil {
		e.quota.Release(model.ResourceTriggers, 1)
		return "", fmt.Errorf("failed to start enrichment job: %w", err)
	}
	return jobID, nil
}
