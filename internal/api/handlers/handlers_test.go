package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdf-agent/backend/internal/answer"
	"github.com/pdf-agent/backend/internal/ingestion"
	"github.com/pdf-agent/backend/internal/models"
	"github.com/pdf-agent/backend/internal/query"
	"github.com/pdf-agent/backend/pkg/circuitbreaker"
)

type fakeProcessor struct {
	ProcessFunc func(req query.QueryRequest) (*query.QueryResponse, error)
	requests    []query.QueryRequest
}

func (f *fakeProcessor) ProcessQuery(_ context.Context, req query.QueryRequest) (*query.QueryResponse, error) {
	f.requests = append(f.requests, req)
	return f.ProcessFunc(req)
}

func postQuery(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/query", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestHandleQuery_Success(t *testing.T) {
	processor := &fakeProcessor{ProcessFunc: func(req query.QueryRequest) (*query.QueryResponse, error) {
		return &query.QueryResponse{
			ID:         "run-1",
			Question:   req.Question,
			Answer:     "Two years [Citation: 24 months (a.pdf(1))]",
			Evaluation: models.Evaluation{Score: 9, Reasoning: "cited", Improvements: "none"},
			SourcePDF:  "/docs/a.pdf",
			LatencyMS:  12,
		}, nil
	}}

	app := fiber.New()
	app.Post("/api/v1/query", NewQueryHandler(processor, 100).HandleQuery)

	status, body := postQuery(t, app, `{"question": "  warranty?\u0000 "}`)
	assert.Equal(t, fiber.StatusOK, status)

	assert.Equal(t, "run-1", body["id"])
	assert.Equal(t, "/docs/a.pdf", body["source_pdf"])
	assert.Equal(t, 9.0, body["evaluation"].(map[string]any)["score"])
	assert.Contains(t, body["answer"], "[Citation: 24 months (a.pdf(1))]")

	require.Len(t, processor.requests, 1)
	assert.Equal(t, "warranty?", processor.requests[0].Question)
}

func TestHandleQuery_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"folder missing", &ingestion.NotFoundError{Path: "/nope"}, fiber.StatusNotFound},
		{"no pdfs", &query.NoDocumentsFoundError{Folder: "/docs"}, fiber.StatusNotFound},
		{"no answer", &query.NoAnswerProducedError{Candidates: 2}, fiber.StatusUnprocessableEntity},
		{
			"provider circuit open",
			&query.NoAnswerProducedError{Candidates: 1, Cause: &answer.GenerationError{
				Document: "a.pdf", Message: "model call failed", Cause: circuitbreaker.ErrCircuitOpen,
			}},
			fiber.StatusServiceUnavailable,
		},
		{"deadline", fmt.Errorf("run: %w", context.DeadlineExceeded), fiber.StatusGatewayTimeout},
		{"other", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := &fakeProcessor{ProcessFunc: func(query.QueryRequest) (*query.QueryResponse, error) {
				return nil, tt.err
			}}
			app := fiber.New()
			app.Post("/api/v1/query", NewQueryHandler(processor, 100).HandleQuery)

			status, body := postQuery(t, app, `{"question": "q"}`)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}

func TestHandleQuery_RejectsBadInput(t *testing.T) {
	processor := &fakeProcessor{}
	app := fiber.New()
	app.Post("/api/v1/query", NewQueryHandler(processor, 5).HandleQuery)

	status, _ := postQuery(t, app, `{"question": ""}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = postQuery(t, app, `{"question": "far too long"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	assert.Empty(t, processor.requests)
}

func TestListDocuments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.PDF"), []byte("%PDF"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	app := fiber.New()
	app.Get("/api/v1/documents", NewDocumentHandler(ingestion.NewLocator(dir)).ListDocuments)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/documents", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Folder    string         `json:"folder"`
		Count     int            `json:"count"`
		Documents []documentInfo `json:"documents"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, dir, body.Folder)
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "A.PDF", body.Documents[0].Name)
	assert.Equal(t, "b.pdf", body.Documents[1].Name)
	assert.Equal(t, "A", body.Documents[0].Title)
	assert.Equal(t, "b", body.Documents[1].Title)
	assert.Equal(t, int64(8), body.Documents[1].SizeBytes)
	assert.Len(t, body.Documents[1].SHA256, 64)
}

func TestListDocuments_MissingFolder(t *testing.T) {
	app := fiber.New()
	app.Get("/api/v1/documents", NewDocumentHandler(ingestion.NewLocator("/definitely/not/here")).ListDocuments)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/documents", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
