package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/resumatch/internal/errors"
	"github.com/gcbaptista/resumatch/model"
)

// UploadDocumentHandler stores one uploaded document.
// Form fields: file (required), id (optional, defaults to the file name).
// Query: sync=true enriches inline and answers 201; otherwise enrichment is queued and
// the answer is 202 with the job ID.
func (api *API) UploadDocumentHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		api.sendFormError(c, "file", err)
		return
	}

	key := strings.TrimSpace(c.PostForm("id"))
	if key == "" {
		key = path.Base(fileHeader.Filename)
	}

	data, err := readFormFile(fileHeader)
	if err != nil {
		SendInternalError(c, "reading upload", err)
		return
	}

	var result *model.IngestResult
	if c.Query("sync") == "true" {
		result, err = api.service.IngestSync(c.Request.Context(), key, data)
	} else {
		result, err = api.service.Ingest(c.Request.Context(), key, data)
	}
	if err != nil {
		api.logger.Warn("Upload rejected", zap.String("key", key), zap.Error(err))
		SendServiceError(c, "document upload", err)
		return
	}

	status := http.StatusCreated
	if result.JobID != "" {
		status = http.StatusAccepted
	}
	c.JSON(status, result)
}

// UploadDocumentsBatchHandler stores every file of the multipart field "files" on a
// background job and answers 202 with the job ID. Documents are keyed by file name.
func (api *API) UploadDocumentsBatchHandler(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		api.sendFormError(c, "files", err)
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		result := &ValidationResult{Valid: true}
		result.AddError("files", "At least one file is required")
		SendValidationError(c, result)
		return
	}

	files := make([]model.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readFormFile(fh)
		if err != nil {
			SendInternalError(c, "reading upload", err)
			return
		}
		files = append(files, model.UploadedFile{Key: path.Base(fh.Filename), Data: data})
	}

	jobID, err := api.service.IngestBatchAsync(c.Request.Context(), files)
	if err != nil {
		if errors.Is(err, internalErrors.ErrInvalidInput) {
			SendServiceError(c, "batch upload", err)
			return
		}
		SendJobExecutionError(c, "batch upload", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": fmt.Sprintf("Ingestion of %d documents started", len(files)),
		"job_id":  jobID,
	})
}

// ListDocumentsHandler lists summaries of every enriched document.
func (api *API) ListDocumentsHandler(c *gin.Context) {
	docs, err := api.service.ListDocuments(c.Request.Context())
	if err != nil {
		SendInternalError(c, "listing documents", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"total":     len(docs),
	})
}

// GetDocumentHandler returns one enriched document.
func (api *API) GetDocumentHandler(c *gin.Context) {
	documentID := c.Param("documentId")
	if result := ValidateDocumentID(documentID); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	rec, err := api.service.GetDocument(c.Request.Context(), documentID)
	if err != nil {
		if errors.Is(err, internalErrors.ErrDocumentNotFound) {
			SendDocumentNotFoundError(c, documentID)
			return
		}
		SendInternalError(c, "getting document", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DeleteDocumentHandler removes a document and its stored payload.
func (api *API) DeleteDocumentHandler(c *gin.Context) {
	documentID := c.Param("documentId")
	if result := ValidateDocumentID(documentID); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if err := api.service.DeleteDocument(c.Request.Context(), documentID); err != nil {
		if errors.Is(err, internalErrors.ErrDocumentNotFound) {
			SendDocumentNotFoundError(c, documentID)
			return
		}
		SendInternalError(c, "deleting document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document '" + documentID + "' deleted"})
}

// sendFormError reports a multipart problem, separating oversize bodies from missing fields.
func (api *API) sendFormError(c *gin.Context, field string, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
		SendError(c, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", api.maxUploadBytes))
		return
	}
	result := &ValidationResult{Valid: true}
	result.AddError(field, "A multipart file is required: "+err.Error())
	SendValidationError(c, result)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
