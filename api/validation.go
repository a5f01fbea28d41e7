// Package api provides validation utilities for API request handling.
package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/gcbaptista/resumatch/model"
)

func init() {
	// Report JSON names rather than Go field names in binding errors.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	}
}

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateDocumentID validates a document ID
func ValidateDocumentID(documentID string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if documentID == "" {
		result.AddError("documentId", "Document ID is required")
		return result
	}

	if strings.TrimSpace(documentID) != documentID {
		result.AddError("documentId", "Document ID cannot have leading or trailing whitespace")
		return result
	}

	return result
}

var jobStatuses = []model.JobStatus{
	model.JobStatusPending,
	model.JobStatusRunning,
	model.JobStatusCompleted,
	model.JobStatusFailed,
	model.JobStatusCancelling,
	model.JobStatusCancelled,
}

// ValidateJobStatus parses an optional status filter. An empty value means no filter.
func ValidateJobStatus(status string) (*model.JobStatus, *ValidationResult) {
	result := &ValidationResult{Valid: true}
	if status == "" {
		return nil, result
	}
	for _, s := range jobStatuses {
		if string(s) == status {
			return &s, result
		}
	}
	result.AddError("status", fmt.Sprintf("Unknown job status '%s'", status))
	return nil, result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}

// ValidateJSONBinding binds the JSON body into target. Struct tag violations are reported
// per field; malformed JSON is reported against the whole body.
func ValidateJSONBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	err := c.ShouldBindJSON(target)
	if err == nil {
		return result
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			result.AddError(fe.Field(), describeFieldError(fe))
		}
		return result
	}

	result.AddError("request_body", "Invalid request body: "+err.Error())
	return result
}

// ValidateQueryBinding validates query parameter binding
func ValidateQueryBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindQuery(target); err != nil {
		result.AddError("query_parameters", "Invalid query parameters: "+err.Error())
	}

	return result
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}
