package jobs

import (
	"sync"
	"time"

	"github.com/gcbaptista/resumatch/model"
)

// recentRunsPerType bounds the execution-time samples kept per job type.
const recentRunsPerType = 100

// JobMetricsData is a point-in-time copy of the job counters.
type JobMetricsData struct {
	JobsCreated        int64                     `json:"jobs_created"`
	JobsCompleted      int64                     `json:"jobs_completed"`
	JobsFailed         int64                     `json:"jobs_failed"`
	JobsCancelled      int64                     `json:"jobs_cancelled"`
	SuccessRate        float64                   `json:"success_rate"`
	CurrentWorkload    int64                     `json:"current_workload"`
	AverageRunTime     time.Duration             `json:"average_run_time_ns"`
	AverageRunTimeType map[model.JobType]int64   `json:"average_run_time_by_type_ns"`
	JobsByType         map[model.JobType]int64   `json:"jobs_by_type"`
	JobsByStatus       map[model.JobStatus]int64 `json:"jobs_by_status"`
	LastUpdated        time.Time                 `json:"last_updated"`
}

// JobMetrics counts job lifecycle events. It is safe for concurrent use.
type JobMetrics struct {
	mu           sync.RWMutex
	created      int64
	completed    int64
	failed       int64
	cancelled    int64
	totalRunTime time.Duration
	byType       map[model.JobType]int64
	byStatus     map[model.JobStatus]int64
	recentRuns   map[model.JobType][]time.Duration
	lastUpdated  time.Time
}

// NewJobMetrics creates an empty metrics collector.
func NewJobMetrics() *JobMetrics {
	return &JobMetrics{
		byType:      make(map[model.JobType]int64),
		byStatus:    make(map[model.JobStatus]int64),
		recentRuns:  make(map[model.JobType][]time.Duration),
		lastUpdated: time.Now(),
	}
}

// RecordJobCreated counts a new pending job.
func (m *JobMetrics) RecordJobCreated(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.created++
	m.byType[jobType]++
	m.byStatus[model.JobStatusPending]++
	m.lastUpdated = time.Now()
}

// RecordJobStatusChange moves one job between status buckets.
func (m *JobMetrics) RecordJobStatusChange(oldStatus, newStatus model.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oldStatus != "" && m.byStatus[oldStatus] > 0 {
		m.byStatus[oldStatus]--
	}
	m.byStatus[newStatus]++
	if newStatus == model.JobStatusCancelled {
		m.cancelled++
	}
	m.lastUpdated = time.Now()
}

// RecordJobCompleted records a successful run and its duration.
func (m *JobMetrics) RecordJobCompleted(jobType model.JobType, runTime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.completed++
	m.totalRunTime += runTime

	runs := append(m.recentRuns[jobType], runTime)
	if len(runs) > recentRunsPerType {
		runs = runs[len(runs)-recentRunsPerType:]
	}
	m.recentRuns[jobType] = runs
	m.lastUpdated = time.Now()
}

// RecordJobFailed records a failed run.
func (m *JobMetrics) RecordJobFailed(model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failed++
	m.lastUpdated = time.Now()
}

// GetMetrics returns a copy of the current counters.
func (m *JobMetrics) GetMetrics() JobMetricsData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data := JobMetricsData{
		JobsCreated:        m.created,
		JobsCompleted:      m.completed,
		JobsFailed:         m.failed,
		JobsCancelled:      m.cancelled,
		SuccessRate:        m.successRate(),
		CurrentWorkload:    m.workload(),
		AverageRunTimeType: make(map[model.JobType]int64, len(m.recentRuns)),
		JobsByType:         make(map[model.JobType]int64, len(m.byType)),
		JobsByStatus:       make(map[model.JobStatus]int64, len(m.byStatus)),
		LastUpdated:        m.lastUpdated,
	}
	if m.completed > 0 {
		data.AverageRunTime = m.totalRunTime / time.Duration(m.completed)
	}
	for t, runs := range m.recentRuns {
		data.AverageRunTimeType[t] = int64(average(runs))
	}
	for k, v := range m.byType {
		data.JobsByType[k] = v
	}
	for k, v := range m.byStatus {
		data.JobsByStatus[k] = v
	}
	return data
}

// GetAverageExecutionTimeByType averages the most recent runs of jobType.
func (m *JobMetrics) GetAverageExecutionTimeByType(jobType model.JobType) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return average(m.recentRuns[jobType])
}

// GetSuccessRate returns completed / (completed + failed), or 1 before any job finished.
func (m *JobMetrics) GetSuccessRate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.successRate()
}

// GetCurrentWorkload returns the number of pending and running jobs.
func (m *JobMetrics) GetCurrentWorkload() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workload()
}

func (m *JobMetrics) successRate() float64 {
	finished := m.completed + m.failed
	if finished == 0 {
		return 1.0
	}
	return float64(m.completed) / float64(finished)
}

func (m *JobMetrics) workload() int64 {
	return m.byStatus[model.JobStatusPending] + m.byStatus[model.JobStatusRunning]
}

func average(runs []time.Duration) time.Duration {
	if len(runs) == 0 {
		return 0
	}
	var total time.Duration
	for _, r := range runs {
		total += r
	}
	return total / time.Duration(len(runs))
}
