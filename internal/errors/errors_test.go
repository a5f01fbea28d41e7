package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestDocumentNotFoundError(t *testing.T) {
	err := NewDocumentNotFoundError("cv.pdf")

	expectedMsg := "document with ID 'cv.pdf' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrDocumentNotFound) {
		t.Error("Expected error to match ErrDocumentNotFound sentinel")
	}

	if errors.Is(err, ErrJobNotFound) {
		t.Error("Error should not match ErrJobNotFound")
	}
}

func TestJobNotFoundError(t *testing.T) {
	err := NewJobNotFoundError("job123")

	expectedMsg := "job with ID 'job123' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrJobNotFound) {
		t.Error("Expected error to match ErrJobNotFound sentinel")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("query", "query is required")
	expectedMsg := "validation error for field 'query': query is required"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	err2 := NewValidationError("", "general validation error")
	expectedMsg2 := "validation error: general validation error"
	if err2.Error() != expectedMsg2 {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg2, err2.Error())
	}

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("Expected error to match ErrInvalidInput sentinel")
	}
}

func TestExtractionError(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := NewExtractionError("resume.docx", "docx", cause)

	expectedMsg := `failed to extract text from 'resume.docx' (format "docx"): unexpected EOF`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrExtraction) {
		t.Error("Expected error to match ErrExtraction sentinel")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("Expected error to unwrap to its cause")
	}
	if errors.Is(err, ErrMatching) {
		t.Error("Extraction error should not match ErrMatching")
	}
}

func TestMatchingError(t *testing.T) {
	cause := fmt.Errorf("empty vocabulary")
	err := NewMatchingError(cause)

	if err.Error() != "matching error: empty vocabulary" {
		t.Errorf("Unexpected error message '%s'", err.Error())
	}
	if !errors.Is(err, ErrMatching) {
		t.Error("Expected error to match ErrMatching sentinel")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected error to unwrap to its cause")
	}
}

func TestCapacityError(t *testing.T) {
	err := NewCapacityError("ocr_pages", 1000, 1, 1000)

	expectedMsg := "ocr_pages limit reached: 1000 used, 1 requested, limit 1000"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}
	if !errors.Is(err, ErrCapacity) {
		t.Error("Expected error to match ErrCapacity sentinel")
	}
}

func TestErrorWrapping(t *testing.T) {
	originalErr := NewCapacityError("storage_bytes", 10, 5, 12)
	wrappedErr := fmt.Errorf("ingest failed: %w", originalErr)

	if !errors.Is(wrappedErr, ErrCapacity) {
		t.Error("Expected wrapped error to match ErrCapacity sentinel")
	}

	var capErr *CapacityError
	if !errors.As(wrappedErr, &capErr) {
		t.Fatal("Expected to extract CapacityError from wrapped error")
	}
	if capErr.Resource != "storage_bytes" {
		t.Errorf("Expected resource 'storage_bytes', got '%s'", capErr.Resource)
	}
}
