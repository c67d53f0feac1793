package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdf-agent/backend/internal/models"
	"github.com/pdf-agent/backend/internal/query"
)

type stubEngine struct {
	resp *query.QueryResponse
	err  error
	got  []string
}

func (s *stubEngine) ProcessQuery(_ context.Context, req query.QueryRequest) (*query.QueryResponse, error) {
	s.got = append(s.got, req.Question)
	return s.resp, s.err
}

func call(t *testing.T, s *Server, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = ToolName
	req.Params.Arguments = args

	result, err := s.HandleCall(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	content, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestHandleCall_ReturnsResultJSON(t *testing.T) {
	engine := &stubEngine{resp: &query.QueryResponse{
		ID:         "run-1",
		Answer:     "Two years [Citation: 24 months (a.pdf(1))]",
		Evaluation: models.Evaluation{Score: 9, Reasoning: "cited", Improvements: "none"},
		SourcePDF:  "/docs/a.pdf",
	}}

	result := call(t, New(engine, 100, "test"), map[string]any{"question": " warranty? "})
	assert.False(t, result.IsError)

	var got models.Result
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &got))
	assert.Equal(t, "/docs/a.pdf", got.SourcePDF)
	assert.Equal(t, 9.0, got.Evaluation.Score)
	assert.Equal(t, []string{"warranty?"}, engine.got)
}

func TestHandleCall_Errors(t *testing.T) {
	t.Run("missing question", func(t *testing.T) {
		engine := &stubEngine{}
		result := call(t, New(engine, 100, "test"), map[string]any{})
		assert.True(t, result.IsError)
		assert.Empty(t, engine.got)
	})

	t.Run("blank question", func(t *testing.T) {
		engine := &stubEngine{}
		result := call(t, New(engine, 100, "test"), map[string]any{"question": "  "})
		assert.True(t, result.IsError)
		assert.Contains(t, text(t, result), "question is required")
	})

	t.Run("pipeline failure", func(t *testing.T) {
		engine := &stubEngine{err: &query.NoDocumentsFoundError{Folder: "/docs"}}
		result := call(t, New(engine, 100, "test"), map[string]any{"question": "q"})
		assert.True(t, result.IsError)
		assert.Equal(t, "no PDF files found in /docs", text(t, result))
	})
}

func TestTool(t *testing.T) {
	tool := Tool()
	assert.Equal(t, ToolName, tool.Name)
	assert.Contains(t, tool.InputSchema.Required, "question")
}
