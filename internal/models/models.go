package models

// Score bounds for Evaluation.Score.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Evaluation is the model's judgement of one generated answer.
type Evaluation struct {
	Score        float64 `json:"score"`
	Reasoning    string  `json:"reasoning"`
	Improvements string  `json:"improvements"`
}

// Result is the best answer of a run and where it came from.
type Result struct {
	Answer     string     `json:"answer"`
	Evaluation Evaluation `json:"evaluation"`
	SourcePDF  string     `json:"source_pdf"`
}

// Candidate is a PDF chosen for reading during a run. Text is filled lazily.
type Candidate struct {
	Path string
	Name string
	Text string
}

// RankedFile is one entry of a relevance ordering.
type RankedFile struct {
	Path   string
	Score  float64
	Reason string
}
