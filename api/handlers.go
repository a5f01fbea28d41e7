package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gcbaptista/resumatch/config"
	"github.com/gcbaptista/resumatch/internal/logger"
	"github.com/gcbaptista/resumatch/services"
)

// Service is everything the HTTP surface needs from the matching service.
type Service interface {
	services.Ranker
	services.DocumentService
	services.UsageReporter
}

// API holds dependencies for API handlers.
type API struct {
	service        Service
	jobs           services.JobManager
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewAPI creates a new API handler structure.
func NewAPI(service Service, jobs services.JobManager, maxUploadBytes int64, log *zap.Logger) *API {
	if maxUploadBytes <= 0 {
		maxUploadBytes = config.DefaultMaxUploadBytes
	}
	return &API{
		service:        service,
		jobs:           jobs,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.OrNop(log),
	}
}

// SetupRoutes defines all the API routes of the matching service.
func SetupRoutes(router *gin.Engine, api *API) {
	// Health check route
	router.GET("/health", api.HealthCheckHandler)

	// Quota usage route
	router.GET("/usage", api.UsageHandler)

	// Job management routes
	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", api.ListJobsHandler)
		jobRoutes.GET("/:jobId", api.GetJobHandler)
		jobRoutes.GET("/metrics", api.GetJobMetricsHandler)
	}

	// Document routes; uploads carry the body size limit
	docRoutes := router.Group("/documents")
	{
		uploads := docRoutes.Group("", RequestSizeLimitMiddleware(api.maxUploadBytes))
		uploads.POST("", api.UploadDocumentHandler)
		uploads.POST("/batch", api.UploadDocumentsBatchHandler)

		docRoutes.GET("", api.ListDocumentsHandler)
		docRoutes.GET("/:documentId", api.GetDocumentHandler)
		docRoutes.DELETE("/:documentId", api.DeleteDocumentHandler)
	}

	// Ranking route
	router.POST("/rank", api.RankHandler)
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "resumatch",
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	})
}

// UsageHandler reports quota usage of every metered resource.
func (api *API) UsageHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.service.Usage())
}
