// Package testing provides utilities and helpers for testing the matching service.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gcbaptista/resumatch/config"
	"github.com/gcbaptista/resumatch/internal/engine"
	"github.com/gcbaptista/resumatch/model"
	"github.com/gcbaptista/resumatch/services"
)

// TestSettings returns default settings rooted in a per-test temporary directory, with
// OCR disabled so tests never depend on a recognizer.
func TestSettings(t *testing.T) *config.Settings {
	settings := config.Default()
	settings.DataDir = t.TempDir()
	settings.OCR.Backend = config.OCRBackendNone
	return settings
}

// CreateTestEngine creates an engine over a temporary data directory and closes it when
// the test ends. mutate, if non-nil, adjusts the settings first.
func CreateTestEngine(t *testing.T, mutate func(*config.Settings)) *engine.Engine {
	t.Helper()
	settings := TestSettings(t)
	if mutate != nil {
		mutate(settings)
	}
	return CreateTestEngineWithOptions(t, engine.Options{Settings: settings})
}

// CreateTestEngineWithOptions is CreateTestEngine with explicit options. A missing
// Settings or Logger is filled in.
func CreateTestEngineWithOptions(t *testing.T, opts engine.Options) *engine.Engine {
	t.Helper()
	if opts.Settings == nil {
		opts.Settings = TestSettings(t)
	}
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}

	eng, err := engine.New(context.Background(), opts)
	require.NoError(t, err, "Failed to create test engine")
	t.Cleanup(func() {
		_ = eng.Close()
	})
	return eng
}

// TestResumes are plain-text résumés keyed by document ID.
var TestResumes = []model.UploadedFile{
	{
		Key: "alice.txt",
		Data: []byte("Alice Example\nEducation\nBSc Computer Science\nExperience\n" +
			"Backend engineer building Python and Docker services on AWS\n" +
			"Skills\nPython, Docker, AWS, SQL"),
	},
	{
		Key: "bob.txt",
		Data: []byte("Bob Example\nExperience\nFrontend developer shipping React and JavaScript apps\n" +
			"Skills\nJavaScript, React, HTML, CSS"),
	},
	{
		Key:  "carol.txt",
		Data: []byte("Carol Example\nEducation\nMBA\nExperience\nProject manager and team leadership"),
	},
}

// AddTestDocuments ingests TestResumes with inline enrichment.
func AddTestDocuments(t *testing.T, eng *engine.Engine) []model.UploadedFile {
	t.Helper()
	for _, f := range TestResumes {
		_, err := eng.IngestSync(context.Background(), f.Key, f.Data)
		require.NoError(t, err, "Failed to ingest %s", f.Key)
	}
	return TestResumes
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      10 * time.Second,
		PollInterval: 20 * time.Millisecond,
		LogProgress:  true,
	}
}

// WaitForJob polls a job until it reaches a terminal status or times out.
func WaitForJob(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not finish within %v timeout", jobID, opts.Timeout)
			return nil
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			switch job.Status {
			case model.JobStatusCompleted, model.JobStatusFailed, model.JobStatusCancelled:
				return job
			case model.JobStatusRunning:
				if opts.LogProgress && job.Progress != nil {
					t.Logf("Job %s progress: %d/%d - %s",
						jobID,
						job.Progress.Current,
						job.Progress.Total,
						job.Progress.Message)
				}
			}
		}
	}
}

// WaitForJobCompletion waits for a job and fails the test unless it completed.
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	job := WaitForJob(t, jobManager, jobID, opts)
	if job.Status != model.JobStatusCompleted {
		t.Fatalf("Job %s ended as %s: %s", jobID, job.Status, job.Error)
	}
	if opts.LogProgress {
		t.Logf("Job %s completed successfully in %v", jobID, job.CompletedAt.Sub(job.CreatedAt))
	}
	return job
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType, expectedKey string) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.Equal(t, expectedKey, job.DocumentKey, "Job document key should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}

// RankTestCase represents a test case for ranking
type RankTestCase struct {
	Name          string
	Query         string
	Limit         int
	ExpectedCount int
	ExpectedFirst string // Expected first result document ID
	ValidateFunc  func(t *testing.T, result *model.RankResult)
}

// RunRankTests runs a suite of ranking tests against a ranker
func RunRankTests(t *testing.T, ranker services.Ranker, tests []RankTestCase) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			result, err := ranker.Rank(context.Background(), tt.Query, tt.Limit)
			require.NoError(t, err, "Rank should not fail")

			assert.Len(t, result.Results, tt.ExpectedCount, "Result count should match")

			if tt.ExpectedFirst != "" && len(result.Results) > 0 {
				assert.Equal(t, tt.ExpectedFirst, result.Results[0].ID, "First result should match expected")
			}

			if tt.ValidateFunc != nil {
				tt.ValidateFunc(t, result)
			}
		})
	}
}
