package evaluation

import "fmt"

// EvaluationError means the model could not score an answer. The answer is
// then treated as having the lowest possible score.
type EvaluationError struct {
	Message string
	Cause   error
}

func (e *EvaluationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("evaluation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("evaluation failed: %s", e.Message)
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}
