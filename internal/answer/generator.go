// Package answer asks the language model to answer a question from one
// document, citing passages of that document inline.
package answer

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pdf-agent/backend/internal/citation"
	"github.com/pdf-agent/backend/internal/llm"
	"github.com/pdf-agent/backend/internal/prompts"
	"github.com/pdf-agent/backend/pkg/logger"
)

const truncationNotice = "\n\n[... document truncated ...]"

type Generator struct {
	llmClient        llm.Completer
	maxDocumentChars int
	maxTokens        int
}

// Answer is the model's answer with its normalized citation markers.
type Answer struct {
	Text      string
	Citations []citation.Citation
	// Reformatted is set when the model's own markers were not well-formed.
	Reformatted bool
}

// NewGenerator caps the document at maxDocumentChars runes (0 = no cap).
func NewGenerator(llmClient llm.Completer, maxDocumentChars int) *Generator {
	return &Generator{
		llmClient:        llmClient,
		maxDocumentChars: maxDocumentChars,
		maxTokens:        1024,
	}
}

func (g *Generator) Generate(ctx context.Context, question, documentName, text string) (*Answer, error) {
	document, truncated := truncate(text, g.maxDocumentChars)
	if truncated {
		logger.Warn("Document truncated for answering",
			zap.String("pdf", documentName),
			zap.Int("max_chars", g.maxDocumentChars),
		)
	}

	prompt, err := prompts.Render(prompts.Answer, map[string]string{
		"DocumentName": documentName,
		"Document":     document,
		"Question":     question,
	})
	if err != nil {
		return nil, &GenerationError{Document: documentName, Message: "cannot build prompt", Cause: err}
	}

	resp, err := g.llmClient.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: prompts.MustGet(prompts.AnswerSystem),
		UserPrompt:   prompt,
		MaxTokens:    g.maxTokens,
	})
	if err != nil {
		return nil, &GenerationError{Document: documentName, Message: "model call failed", Cause: err}
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return nil, &GenerationError{Document: documentName, Message: "empty answer"}
	}

	reformatted := !citation.Valid(content)
	normalized, citations := citation.Normalize(content, documentName)
	if reformatted {
		logger.Debug("Rewrote malformed citation markers",
			zap.String("pdf", documentName),
			zap.Int("well_formed", len(citation.Extract(content))),
			zap.Int("total", len(citations)),
		)
	}

	logger.Info("Answer generated",
		zap.String("pdf", documentName),
		zap.Int("answer_length", len(normalized)),
		zap.Int("citations", len(citations)),
	)

	return &Answer{Text: normalized, Citations: citations, Reformatted: reformatted}, nil
}

func truncate(text string, max int) (string, bool) {
	if max <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text, false
	}
	return string(runes[:max]) + truncationNotice, true
}
