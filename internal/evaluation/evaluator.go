package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdf-agent/backend/internal/llm"
	"github.com/pdf-agent/backend/internal/models"
	"github.com/pdf-agent/backend/internal/prompts"
	"github.com/pdf-agent/backend/internal/schemas"
	"github.com/pdf-agent/backend/pkg/logger"
)

type Evaluator struct {
	llmClient llm.Completer
}

func NewEvaluator(llmClient llm.Completer) *Evaluator {
	return &Evaluator{
		llmClient: llmClient,
	}
}

// evaluationResponse accepts reasoning and improvements either as a string or
// as a list of strings; models use both.
type evaluationResponse struct {
	Score        float64    `json:"score"`
	Reasoning    textOrList `json:"reasoning"`
	Improvements textOrList `json:"improvements"`
}

type textOrList string

func (t *textOrList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = textOrList(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*t = textOrList(strings.Join(list, "\n"))
	return nil
}

// Evaluate scores answer on the 0-10 scale. Out-of-range scores are clamped.
func (e *Evaluator) Evaluate(ctx context.Context, question, answer string) (*models.Evaluation, error) {
	prompt, err := prompts.Render(prompts.Evaluate, map[string]string{
		"Question": question,
		"Answer":   answer,
	})
	if err != nil {
		return nil, &EvaluationError{Message: "cannot build prompt", Cause: err}
	}

	resp, err := e.llmClient.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: prompts.MustGet(prompts.EvaluateSystem),
		UserPrompt:   prompt,
		MaxTokens:    512,
		JSON:         true,
	})
	if err != nil {
		return nil, &EvaluationError{Message: "model call failed", Cause: err}
	}

	evaluation, err := parseEvaluation(resp.Content)
	if err != nil {
		return nil, err
	}

	logger.Info("Answer evaluated",
		zap.Float64("score", evaluation.Score),
		zap.Int("reasoning_length", len(evaluation.Reasoning)),
	)

	return evaluation, nil
}

func parseEvaluation(content string) (*models.Evaluation, error) {
	content = llm.CleanJSONBlock(content)

	if err := schemas.ValidateJSONString(schemas.Evaluation, content); err != nil {
		return nil, &EvaluationError{Message: "malformed evaluation response", Cause: err}
	}

	var response evaluationResponse
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		return nil, &EvaluationError{Message: "malformed evaluation response", Cause: err}
	}

	score := response.Score
	if score < models.MinScore {
		score = models.MinScore
	}
	if score > models.MaxScore {
		score = models.MaxScore
	}

	return &models.Evaluation{
		Score:        score,
		Reasoning:    strings.TrimSpace(string(response.Reasoning)),
		Improvements: strings.TrimSpace(string(response.Improvements)),
	}, nil
}
