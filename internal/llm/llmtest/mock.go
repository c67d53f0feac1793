// Package llmtest provides a scriptable llm.Completer for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/pdf-agent/backend/internal/llm"
)

// MockCompleter implements llm.Completer. CompleteFunc decides each response;
// every request is recorded in Requests.
type MockCompleter struct {
	CompleteFunc func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)

	mu       sync.Mutex
	Requests []llm.CompletionRequest
}

func (m *MockCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &llm.CompletionResponse{Content: "{}", Model: "mock-model"}, nil
}

// Calls returns how many completions were requested.
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// Reply returns a CompleteFunc that always answers with content.
func Reply(content string) func(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return func(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return &llm.CompletionResponse{Content: content, Model: "mock-model"}, nil
	}
}

// Fail returns a CompleteFunc that always fails with err.
func Fail(err error) func(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return func(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return nil, err
	}
}
