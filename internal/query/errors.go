package query

import "fmt"

// NoDocumentsFoundError means the PDF folder exists but holds no PDFs.
type NoDocumentsFoundError struct {
	Folder string
}

func (e *NoDocumentsFoundError) Error() string {
	return fmt.Sprintf("no PDF files found in %s", e.Folder)
}

// NoAnswerProducedError means no candidate produced a scored answer. Cause is
// the last per-candidate failure.
type NoAnswerProducedError struct {
	Candidates int
	Cause      error
}

func (e *NoAnswerProducedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no answer produced from %d PDF(s): last error: %v", e.Candidates, e.Cause)
	}
	return fmt.Sprintf("no answer produced from %d PDF(s)", e.Candidates)
}

func (e *NoAnswerProducedError) Unwrap() error {
	return e.Cause
}
