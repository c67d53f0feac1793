// Package ranking orders candidate PDFs by how likely their file names are to
// hold the answer, as judged by the language model.
package ranking

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdf-agent/backend/internal/ingestion"
	"github.com/pdf-agent/backend/internal/llm"
	"github.com/pdf-agent/backend/internal/models"
	"github.com/pdf-agent/backend/internal/prompts"
	"github.com/pdf-agent/backend/internal/schemas"
	"github.com/pdf-agent/backend/pkg/logger"
)

type Ranker struct {
	llmClient llm.Completer
}

func NewRanker(llmClient llm.Completer) *Ranker {
	return &Ranker{llmClient: llmClient}
}

type rankingResponse struct {
	Rankings []struct {
		File   string  `json:"file"`
		Score  float64 `json:"score"`
		Reason string  `json:"reason"`
	} `json:"rankings"`
}

// Rank returns paths reordered by descending relevance. The result is always a
// permutation of paths: files the model leaves out score 0, equal scores keep
// their input order. Fewer than two paths need no model call.
func (r *Ranker) Rank(ctx context.Context, question string, paths []string) ([]models.RankedFile, error) {
	if len(paths) < 2 {
		ranked := make([]models.RankedFile, len(paths))
		for i, p := range paths {
			ranked[i] = models.RankedFile{Path: p, Score: 1, Reason: "only candidate"}
		}
		return ranked, nil
	}

	prompt, err := r.buildPrompt(question, paths)
	if err != nil {
		return nil, &RankingError{Message: "cannot build prompt", Cause: err}
	}

	resp, err := r.llmClient.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: prompts.MustGet(prompts.RankFilesSystem),
		UserPrompt:   prompt,
		MaxTokens:    1024,
		JSON:         true,
	})
	if err != nil {
		return nil, &RankingError{Message: "model call failed", Cause: err}
	}

	ranked, err := parseRankings(resp.Content, paths)
	if err != nil {
		return nil, err
	}

	logger.Info("PDFs ranked",
		zap.Int("candidates", len(ranked)),
		zap.String("top", ingestion.DocumentName(ranked[0].Path)),
		zap.Float64("top_score", ranked[0].Score),
	)

	return ranked, nil
}

func (r *Ranker) buildPrompt(question string, paths []string) (string, error) {
	var lines []string
	for _, p := range paths {
		lines = append(lines, "- "+ingestion.DocumentName(p))
	}

	return prompts.Render(prompts.RankFiles, map[string]string{
		"Question":  question,
		"Filenames": strings.Join(lines, "\n"),
	})
}

func parseRankings(content string, paths []string) ([]models.RankedFile, error) {
	content = llm.CleanJSONBlock(content)

	if err := schemas.ValidateJSONString(schemas.Rankings, content); err != nil {
		return nil, &RankingError{Message: "malformed ranking response", Cause: err}
	}

	var response rankingResponse
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		return nil, &RankingError{Message: "malformed ranking response", Cause: err}
	}

	byKey := make(map[string][]int, len(paths))
	for i, p := range paths {
		key := matchKey(ingestion.DocumentName(p))
		byKey[key] = append(byKey[key], i)
	}

	ranked := make([]models.RankedFile, len(paths))
	for i, p := range paths {
		ranked[i] = models.RankedFile{Path: p}
	}

	matched := 0
	seen := make(map[int]bool, len(paths))
	for _, item := range response.Rankings {
		score := clamp(item.Score)
		for _, idx := range byKey[matchKey(item.File)] {
			if seen[idx] && ranked[idx].Score >= score {
				continue
			}
			if !seen[idx] {
				matched++
				seen[idx] = true
			}
			ranked[idx].Score = score
			ranked[idx].Reason = item.Reason
		}
	}

	if matched == 0 {
		return nil, &RankingError{Message: fmt.Sprintf("none of the %d ranked entries match a candidate file", len(response.Rankings))}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked, nil
}

// matchKey compares file names the way a model tends to echo them back:
// case-insensitive, with or without the extension or a list bullet.
func matchKey(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "- ")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".pdf")
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Paths returns the ordered paths of a ranking.
func Paths(ranked []models.RankedFile) []string {
	paths := make([]string, len(ranked))
	for i, r := range ranked {
		paths[i] = r.Path
	}
	return paths
}
