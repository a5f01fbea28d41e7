package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gcbaptista/resumatch/internal/errors"
	"github.com/gcbaptista/resumatch/internal/logger"
	"github.com/gcbaptista/resumatch/model"
)

// JobFunc is the body of a background job. ctx is cancelled when the manager stops.
type JobFunc func(ctx context.Context, job *model.Job) error

// Manager runs background jobs on a bounded number of worker slots and keeps their
// status for later inspection.
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*model.Job
	workers  chan struct{} // Limits concurrent jobs
	stopChan chan struct{}
	stopOnce sync.Once
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	metrics  *JobMetrics
	logger   *zap.Logger

	// Retention is how long finished jobs are kept; CleanupEvery is how often they are purged.
	Retention    time.Duration
	CleanupEvery time.Duration
}

// NewManager creates a job manager with maxWorkers slots (at least one).
func NewManager(maxWorkers int, log *zap.Logger) *Manager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:         make(map[string]*model.Job),
		workers:      make(chan struct{}, maxWorkers),
		stopChan:     make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
		metrics:      NewJobMetrics(),
		logger:       logger.OrNop(log).Named("jobs"),
		Retention:    24 * time.Hour,
		CleanupEvery: time.Hour,
	}
}

// Start begins the background cleanup of finished jobs.
func (m *Manager) Start() {
	if m.CleanupEvery <= 0 {
		m.CleanupEvery = time.Hour
	}
	m.logger.Info("Job manager started", zap.Int("max_workers", cap(m.workers)))
	go m.cleanupRoutine()
}

// Stop cancels running jobs, marks queued ones as cancelled and waits for all of them.
// It is safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		close(m.stopChan)
		m.mu.Unlock()
		m.cancel()
		m.wg.Wait()
		m.logger.Info("Job manager stopped")
	})
}

// CreateJob registers a pending job and returns its ID.
func (m *Manager) CreateJob(jobType model.JobType, documentKey string, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:          uuid.New().String(),
		Type:        jobType,
		Status:      model.JobStatusPending,
		DocumentKey: documentKey,
		CreatedAt:   time.Now(),
		Metadata:    metadata,
	}

	m.jobs[job.ID] = job
	m.metrics.RecordJobCreated(jobType)
	m.logger.Debug("Created job",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("document_key", documentKey))
	return job.ID
}

// GetJob returns a copy of the job with the given ID.
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns copies of the jobs for documentKey (all jobs when empty), optionally
// filtered by status, newest first.
func (m *Manager) ListJobs(documentKey string, status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0)
	for _, job := range m.jobs {
		if documentKey != "" && job.DocumentKey != documentKey {
			continue
		}
		if status != nil && job.Status != *status {
			continue
		}
		result = append(result, copyJob(job))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// ExecuteJob queues jobFunc for the pending job and returns immediately. The job runs
// once a worker slot is free; if the manager stops first it is marked cancelled.
func (m *Manager) ExecuteJob(jobID string, jobFunc JobFunc) error {
	m.mu.Lock()
	select {
	case <-m.stopChan:
		m.mu.Unlock()
		return fmt.Errorf("job manager is shutting down")
	default:
	}

	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	// The job body receives its own copy; status lives in the manager.
	snapshot := copyJob(job)
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()

		select {
		case m.workers <- struct{}{}:
		case <-m.stopChan:
			m.updateJobStatus(jobID, model.JobStatusCancelled, "Job manager shutting down")
			return
		}
		defer func() { <-m.workers }()

		m.markRunning(jobID)
		startTime := time.Now()

		err := m.run(jobFunc, snapshot)
		runTime := time.Since(startTime)

		switch {
		case err != nil && m.ctx.Err() != nil:
			m.updateJobStatus(jobID, model.JobStatusCancelled, err.Error())
			m.logger.Warn("Job cancelled", zap.String("job_id", jobID), zap.Error(err))
		case err != nil:
			m.updateJobStatus(jobID, model.JobStatusFailed, err.Error())
			m.metrics.RecordJobFailed(snapshot.Type)
			m.logger.Warn("Job failed",
				zap.String("job_id", jobID),
				zap.String("type", string(snapshot.Type)),
				zap.Duration("run_time", runTime),
				zap.Error(err))
		default:
			m.updateJobStatus(jobID, model.JobStatusCompleted, "")
			m.metrics.RecordJobCompleted(snapshot.Type, runTime)
			m.logger.Debug("Job completed",
				zap.String("job_id", jobID),
				zap.String("type", string(snapshot.Type)),
				zap.Duration("run_time", runTime))
		}
	}()

	return nil
}

// run executes jobFunc, turning a panic into an error.
func (m *Manager) run(jobFunc JobFunc, job *model.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return jobFunc(m.ctx, job)
}

// UpdateJobProgress updates the progress of a job.
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}
	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

func (m *Manager) markRunning(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	oldStatus := job.Status
	job.Status = model.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	m.metrics.RecordJobStatusChange(oldStatus, job.Status)
}

func (m *Manager) updateJobStatus(jobID string, status model.JobStatus, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	oldStatus := job.Status
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	if status == model.JobStatusCompleted || status == model.JobStatusFailed || status == model.JobStatusCancelled {
		now := time.Now()
		job.CompletedAt = &now
	}

	m.metrics.RecordJobStatusChange(oldStatus, status)
}

func (m *Manager) cleanupRoutine() {
	ticker := time.NewTicker(m.CleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(m.Retention)
		case <-m.stopChan:
			return
		}
	}
}

// CleanupOldJobs removes finished jobs older than maxAge and returns how many were removed.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0
	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.logger.Info("Cleaned up old jobs", zap.Int("count", cleaned))
	}
	return cleaned
}

// GetMetrics returns current job metrics.
func (m *Manager) GetMetrics() JobMetricsData {
	return m.metrics.GetMetrics()
}

// GetJobSuccessRate returns the overall job success rate.
func (m *Manager) GetJobSuccessRate() float64 {
	return m.metrics.GetSuccessRate()
}

// GetCurrentWorkload returns the number of pending and running jobs.
func (m *Manager) GetCurrentWorkload() int64 {
	return m.metrics.GetCurrentWorkload()
}

func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	if job.Metadata != nil {
		jobCopy.Metadata = make(map[string]string, len(job.Metadata))
		for k, v := range job.Metadata {
			jobCopy.Metadata[k] = v
		}
	}
	return &jobCopy
}
