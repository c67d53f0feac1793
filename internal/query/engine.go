package query

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdf-agent/backend/internal/answer"
	"github.com/pdf-agent/backend/internal/citation"
	"github.com/pdf-agent/backend/internal/ingestion"
	"github.com/pdf-agent/backend/internal/metrics"
	"github.com/pdf-agent/backend/internal/models"
	"github.com/pdf-agent/backend/internal/ranking"
	"github.com/pdf-agent/backend/pkg/logger"
)

type Locator interface {
	Folder() string
	Locate(ctx context.Context) ([]string, error)
}

type Ranker interface {
	Rank(ctx context.Context, question string, paths []string) ([]models.RankedFile, error)
}

type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

type Generator interface {
	Generate(ctx context.Context, question, documentName, text string) (*answer.Answer, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context, question, answer string) (*models.Evaluation, error)
}

// Components are the pipeline stages an Engine drives.
type Components struct {
	Locator   Locator
	Ranker    Ranker
	Extractor Extractor
	Generator Generator
	Evaluator Evaluator
}

type Engine struct {
	locator   Locator
	ranker    Ranker
	extractor Extractor
	generator Generator
	evaluator Evaluator

	// goodEnoughScore stops the scan once the best score reaches it; 0 disables.
	goodEnoughScore float64
}

type QueryRequest struct {
	Question string
	Observer Observer
}

type QueryResponse struct {
	ID         string              `json:"id"`
	Question   string              `json:"question"`
	Answer     string              `json:"answer"`
	Evaluation models.Evaluation   `json:"evaluation"`
	SourcePDF  string              `json:"source_pdf"`
	Citations  []citation.Citation `json:"citations"`
	Candidates int                 `json:"candidates"`
	LatencyMS  int                 `json:"latency_ms"`
}

// Result is the answer, evaluation and source path triple of the response.
func (r *QueryResponse) Result() models.Result {
	return models.Result{
		Answer:     r.Answer,
		Evaluation: r.Evaluation,
		SourcePDF:  r.SourcePDF,
	}
}

func NewEngine(c Components, goodEnoughScore float64) *Engine {
	return &Engine{
		locator:         c.Locator,
		ranker:          c.Ranker,
		extractor:       c.Extractor,
		generator:       c.Generator,
		evaluator:       c.Evaluator,
		goodEnoughScore: goodEnoughScore,
	}
}

type best struct {
	candidate  models.Candidate
	answer     *answer.Answer
	evaluation *models.Evaluation
}

// ProcessQuery runs one pipeline: locate, rank, then read, answer and score
// each PDF in ranked order, keeping the highest-scoring answer. Candidates are
// processed one at a time; a failure on one PDF only skips that PDF.
func (e *Engine) ProcessQuery(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	startTime := time.Now()
	queryID := uuid.New().String()
	emit := func(ev Event) {
		if req.Observer != nil {
			ev.QueryID = queryID
			req.Observer(ev)
		}
	}

	logger.Info("Processing query",
		zap.String("query_id", queryID),
		zap.String("question", req.Question),
	)

	resp, err := e.run(ctx, queryID, req.Question, emit)

	metrics.QueryDuration.Observe(time.Since(startTime).Seconds())
	metrics.QueryTotal.WithLabelValues(statusOf(err)).Inc()

	if err != nil {
		logger.Warn("Query failed",
			zap.String("query_id", queryID),
			zap.Error(err),
		)
		emit(Event{Stage: StageDone, Outcome: OutcomeFailed, Error: err.Error()})
		return nil, err
	}

	resp.LatencyMS = int(time.Since(startTime).Milliseconds())
	metrics.BestScore.Observe(resp.Evaluation.Score)

	logger.Info("Query processed successfully",
		zap.String("query_id", queryID),
		zap.String("pdf", resp.SourcePDF),
		zap.Float64("score", resp.Evaluation.Score),
		zap.Int("latency_ms", resp.LatencyMS),
	)

	score := resp.Evaluation.Score
	emit(Event{Stage: StageDone, Outcome: OutcomeOK, PDF: resp.SourcePDF, Score: &score})

	return resp, nil
}

func (e *Engine) run(ctx context.Context, queryID, question string, emit func(Event)) (*QueryResponse, error) {
	paths, err := e.locator.Locate(ctx)
	if err != nil {
		return nil, err
	}
	metrics.CandidatesPerQuery.Observe(float64(len(paths)))
	if len(paths) == 0 {
		return nil, &NoDocumentsFoundError{Folder: e.locator.Folder()}
	}
	emit(Event{Stage: StageLocate, Outcome: OutcomeOK, Count: len(paths)})

	ordered := e.rank(ctx, queryID, question, paths, emit)

	var (
		top     *best
		lastErr error
	)
	for _, path := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidate := models.Candidate{Path: path, Name: ingestion.DocumentName(path)}
		ans, evaluation, err := e.processCandidate(ctx, question, &candidate, emit)
		if err != nil {
			lastErr = err
			logger.Warn("Skipping PDF",
				zap.String("query_id", queryID),
				zap.String("pdf", candidate.Name),
				zap.Error(err),
			)
			continue
		}
		if top == nil || evaluation.Score > top.evaluation.Score {
			top = &best{candidate: candidate, answer: ans, evaluation: evaluation}
			score := evaluation.Score
			emit(Event{Stage: StageEvaluate, Outcome: OutcomeNewBest, PDF: candidate.Name, Score: &score})
			logger.Debug("New best answer",
				zap.String("query_id", queryID),
				zap.String("pdf", candidate.Name),
				zap.Float64("score", score),
			)
		}

		if e.goodEnoughScore > 0 && top.evaluation.Score >= e.goodEnoughScore {
			logger.Info("Answer good enough, stopping early",
				zap.String("query_id", queryID),
				zap.Float64("score", top.evaluation.Score),
				zap.Float64("threshold", e.goodEnoughScore),
			)
			break
		}
	}

	if top == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, &NoAnswerProducedError{Candidates: len(ordered), Cause: lastErr}
	}

	return &QueryResponse{
		ID:         queryID,
		Question:   question,
		Answer:     top.answer.Text,
		Evaluation: *top.evaluation,
		SourcePDF:  top.candidate.Path,
		Citations:  top.answer.Citations,
		Candidates: len(ordered),
	}, nil
}

// rank orders paths by relevance, falling back to locator order when the
// ranker fails.
func (e *Engine) rank(ctx context.Context, queryID, question string, paths []string, emit func(Event)) []string {
	ranked, err := e.ranker.Rank(ctx, question, paths)
	if err != nil {
		metrics.RankingFallbacks.Inc()
		logger.Warn("Ranking failed, using folder order",
			zap.String("query_id", queryID),
			zap.Error(err),
		)
		emit(Event{Stage: StageRank, Outcome: OutcomeFallback, Count: len(paths), Error: err.Error()})
		return paths
	}

	emit(Event{Stage: StageRank, Outcome: OutcomeOK, Count: len(ranked)})
	return ranking.Paths(ranked)
}

// processCandidate extracts, answers and scores one PDF. An answer that
// cannot be scored counts as the lowest possible score, which never beats the
// initial best, so it is reported as a failure like the other stages.
func (e *Engine) processCandidate(ctx context.Context, question string, c *models.Candidate, emit func(Event)) (*answer.Answer, *models.Evaluation, error) {
	text, err := e.extractor.Extract(ctx, c.Path)
	if err != nil {
		recordStage(StageExtract, err)
		emit(Event{Stage: StageExtract, Outcome: OutcomeFailed, PDF: c.Name, Error: err.Error()})
		return nil, nil, err
	}
	c.Text = text
	recordStage(StageExtract, nil)
	emit(Event{Stage: StageExtract, Outcome: OutcomeOK, PDF: c.Name})

	ans, err := e.generator.Generate(ctx, question, c.Name, c.Text)
	if err != nil {
		recordStage(StageAnswer, err)
		emit(Event{Stage: StageAnswer, Outcome: OutcomeFailed, PDF: c.Name, Error: err.Error()})
		return nil, nil, err
	}
	recordStage(StageAnswer, nil)
	emit(Event{Stage: StageAnswer, Outcome: OutcomeOK, PDF: c.Name})

	evaluation, err := e.evaluator.Evaluate(ctx, question, ans.Text)
	if err != nil {
		recordStage(StageEvaluate, err)
		emit(Event{Stage: StageEvaluate, Outcome: OutcomeFailed, PDF: c.Name, Error: err.Error()})
		return nil, nil, err
	}
	recordStage(StageEvaluate, nil)
	score := evaluation.Score
	emit(Event{Stage: StageEvaluate, Outcome: OutcomeOK, PDF: c.Name, Score: &score})

	return ans, evaluation, nil
}

func recordStage(stage string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailed
	}
	metrics.CandidateOutcomes.WithLabelValues(stage, outcome).Inc()
}

func statusOf(err error) string {
	var (
		notFound *ingestion.NotFoundError
		noDocs   *NoDocumentsFoundError
		noAnswer *NoAnswerProducedError
	)
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &notFound), errors.As(err, &noDocs):
		return "no_documents"
	case errors.As(err, &noAnswer):
		return "no_answer"
	default:
		return "error"
	}
}
