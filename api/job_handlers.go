package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/resumatch/internal/errors"
)

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := api.jobs.GetJob(jobID)
	if err != nil {
		if errors.Is(err, internalErrors.ErrJobNotFound) {
			SendJobNotFoundError(c, jobID)
			return
		}
		SendInternalError(c, "getting job", err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobsHandler lists jobs, newest first.
// Query: document_key and status filters, both optional.
func (api *API) ListJobsHandler(c *gin.Context) {
	documentKey := c.Query("document_key")
	statusFilter, result := ValidateJobStatus(c.Query("status"))
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	jobs := api.jobs.ListJobs(documentKey, statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":         jobs,
		"document_key": documentKey,
		"total":        len(jobs),
	})
}

// GetJobMetricsHandler handles requests to get job performance metrics
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	metrics := api.jobs.GetMetrics()

	c.JSON(http.StatusOK, gin.H{
		"metrics":          metrics,
		"success_rate":     metrics.SuccessRate,
		"current_workload": metrics.CurrentWorkload,
	})
}
