package answer

import "fmt"

// GenerationError means the model could not produce an answer for one document.
type GenerationError struct {
	Document string
	Message  string
	Cause    error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("answer generation failed for %s: %s: %v", e.Document, e.Message, e.Cause)
	}
	return fmt.Sprintf("answer generation failed for %s: %s", e.Document, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
