// Package mcpserver exposes the pipeline as an MCP tool over stdio.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/pdf-agent/backend/internal/api/handlers"
	"github.com/pdf-agent/backend/internal/middleware/validation"
	"github.com/pdf-agent/backend/internal/query"
	"github.com/pdf-agent/backend/pkg/logger"
)

const (
	ServerName = "pdf-agent"
	ToolName   = "local_pdf_citation"
)

type Server struct {
	queryEngine       handlers.QueryProcessor
	maxQuestionLength int
	mcpServer         *server.MCPServer
}

func New(queryEngine handlers.QueryProcessor, maxQuestionLength int, version string) *Server {
	s := &Server{
		queryEngine:       queryEngine,
		maxQuestionLength: maxQuestionLength,
		mcpServer: server.NewMCPServer(ServerName, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	s.mcpServer.AddTool(Tool(), s.HandleCall)

	return s
}

// Tool describes the single tool this server offers.
func Tool() mcp.Tool {
	return mcp.NewTool(ToolName,
		mcp.WithDescription("Answer a question from the PDFs in the configured local folder. "+
			"Returns the best-scoring answer with inline citations of the form "+
			"[Citation: <text> (<document>(<index>))], its evaluation and the source PDF path."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer from the local PDFs"),
		),
	)
}

// HandleCall runs one question. Pipeline failures come back as tool errors so
// the client sees a readable message instead of a protocol error.
func (s *Server) HandleCall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	question, err := validation.SanitizeQuestion(raw, s.maxQuestionLength)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response, err := s.queryEngine.ProcessQuery(ctx, query.QueryRequest{Question: question})
	if err != nil {
		logger.Warn("Tool call failed", zap.String("tool", ToolName), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	payload, err := json.MarshalIndent(response.Result(), "", "  ")
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(string(payload)), nil
}

// ServeStdio blocks serving MCP on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	logger.Info("MCP server listening on stdio", zap.String("tool", ToolName))
	return server.ServeStdio(s.mcpServer)
}
