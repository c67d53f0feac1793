package query

// Pipeline stages reported to an Observer.
const (
	StageLocate   = "locate"
	StageRank     = "rank"
	StageExtract  = "extract"
	StageAnswer   = "answer"
	StageEvaluate = "evaluate"
	StageDone     = "done"
)

// Stage outcomes reported to an Observer.
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeFallback = "fallback"
	OutcomeNewBest  = "new_best"
)

// Event describes one step of a run. PDF is empty for run-level stages.
type Event struct {
	QueryID string   `json:"query_id"`
	Stage   string   `json:"stage"`
	Outcome string   `json:"outcome"`
	PDF     string   `json:"pdf,omitempty"`
	Score   *float64 `json:"score,omitempty"`
	Count   int      `json:"count,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Observer receives events synchronously, in pipeline order.
type Observer func(Event)
