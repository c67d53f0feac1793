package ingestion

import "fmt"

// NotFoundError means the configured PDF folder is missing or is not a directory.
type NotFoundError struct {
	Path  string
	Cause error
}

func (e *NotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("PDF folder not found: %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("PDF folder not found: %s is not a directory", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// ExtractionError means one PDF could not be opened or yielded no text.
type ExtractionError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to extract text from %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to extract text from %s: %s", e.Path, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
