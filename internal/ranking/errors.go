package ranking

import "fmt"

// RankingError means the model's ranking could not be turned into an ordering.
// Callers fall back to the unranked order.
type RankingError struct {
	Message string
	Cause   error
}

func (e *RankingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ranking failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("ranking failed: %s", e.Message)
}

func (e *RankingError) Unwrap() error {
	return e.Cause
}
