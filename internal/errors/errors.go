package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrDocumentNotFound is returned when a document is not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtraction is returned when raw bytes could not be converted to text
	ErrExtraction = errors.New("extraction failed")

	// ErrMatching is returned when vectorization or scoring failed
	ErrMatching = errors.New("matching failed")

	// ErrCapacity is returned when an externally imposed quota refuses an operation
	ErrCapacity = errors.New("capacity exceeded")
)

// DocumentNotFoundError represents a document not found error with context
type DocumentNotFoundError struct {
	DocumentID string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document with ID '%s' not found", e.DocumentID)
}

func (e *DocumentNotFoundError) Is(target error) bool {
	return target == ErrDocumentNotFound
}

// NewDocumentNotFoundError creates a new DocumentNotFoundError
func NewDocumentNotFoundError(documentID string) *DocumentNotFoundError {
	return &DocumentNotFoundError{DocumentID: documentID}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ExtractionError reports that a document payload could not be turned into text.
// It is contained per document: callers skip the document and keep going.
type ExtractionError struct {
	Key    string
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("failed to extract text from '%s' (format %q): %v", e.Key, e.Format, e.Err)
	}
	return fmt.Sprintf("failed to extract text (format %q): %v", e.Format, e.Err)
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError
func NewExtractionError(key, format string, err error) *ExtractionError {
	return &ExtractionError{Key: key, Format: format, Err: err}
}

// MatchingError reports that a whole ranking request failed.
type MatchingError struct {
	Err error
}

func (e *MatchingError) Error() string {
	return fmt.Sprintf("matching error: %v", e.Err)
}

func (e *MatchingError) Is(target error) bool {
	return target == ErrMatching
}

func (e *MatchingError) Unwrap() error {
	return e.Err
}

// NewMatchingError creates a new MatchingError
func NewMatchingError(err error) *MatchingError {
	return &MatchingError{Err: err}
}

// CapacityError reports that a quota refused an operation.
type CapacityError struct {
	Resource  string
	Used      int64
	Requested int64
	Limit     int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s limit reached: %d used, %d requested, limit %d", e.Resource, e.Used, e.Requested, e.Limit)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacity
}

// NewCapacityError creates a new CapacityError
func NewCapacityError(resource string, used, requested, limit int64) *CapacityError {
	return &CapacityError{Resource: resource, Used: used, Requested: requested, Limit: limit}
}
