// Package llm is the single gateway to the language-model provider. The
// ranker, the answer generator and the evaluator only see Completer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdf-agent/backend/internal/metrics"
	"github.com/pdf-agent/backend/pkg/circuitbreaker"
	"github.com/pdf-agent/backend/pkg/logger"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// AnthropicBaseURL is Anthropic's OpenAI-compatible endpoint.
const AnthropicBaseURL = "https://api.anthropic.com/v1/"

var ErrEmptyResponse = errors.New("model returned no content")

// Completer sends one system+user prompt pair and returns the model's text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	// Temperature and MaxTokens fall back to the client defaults when zero.
	Temperature float32
	MaxTokens   int
	// JSON asks the provider for a JSON object response where supported.
	JSON bool
}

type CompletionResponse struct {
	Content string
	Model   string
	Usage   Usage
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Options struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration

	BreakerFailureThreshold uint32
	BreakerCooldown         time.Duration
}

// NewClient builds the provider named in opts.Provider.
func NewClient(ctx context.Context, opts Options) (Completer, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	switch opts.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(opts), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, opts)
	case ProviderAnthropic:
		if opts.BaseURL == "" {
			opts.BaseURL = AnthropicBaseURL
		}
		return NewOpenAIClient(opts), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", opts.Provider)
	}
}

func newBreaker(provider string, opts Options) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New("llm-"+provider, circuitbreaker.Config{
		FailureThreshold: opts.BreakerFailureThreshold,
		Cooldown:         opts.BreakerCooldown,
		Logger:           logger.GetLogger(),
		OnStateChange: func(_ string, _, to circuitbreaker.State) {
			metrics.LLMCircuitState.WithLabelValues(provider).Set(float64(to))
		},
	})
}

// callerGaveUp keeps caller cancellation from counting against the provider.
func callerGaveUp(err error) bool {
	return errors.Is(err, context.Canceled)
}

func recordUsage(model string, usage Usage) {
	metrics.LLMTokensUsed.WithLabelValues(model, "prompt").Add(float64(usage.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues(model, "completion").Add(float64(usage.CompletionTokens))

	logger.Debug("LLM completion generated",
		zap.String("model", model),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
	)
}
