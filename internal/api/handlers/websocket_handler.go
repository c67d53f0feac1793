package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/pdf-agent/backend/internal/middleware/validation"
	"github.com/pdf-agent/backend/internal/query"
	"github.com/pdf-agent/backend/pkg/logger"
)

// WebSocketHandler runs questions sent over a websocket and streams one
// "progress" message per pipeline step, then a "complete" or "error" message.
type WebSocketHandler struct {
	queryEngine       QueryProcessor
	maxQuestionLength int
}

func NewWebSocketHandler(queryEngine QueryProcessor, maxQuestionLength int) *WebSocketHandler {
	return &WebSocketHandler{
		queryEngine:       queryEngine,
		maxQuestionLength: maxQuestionLength,
	}
}

type wsRequest struct {
	Type     string `json:"type"`
	Question string `json:"question"`
}

type wsMessage struct {
	Type     string               `json:"type"`
	Event    *query.Event         `json:"event,omitempty"`
	Response *query.QueryResponse `json:"response,omitempty"`
	Error    string               `json:"error,omitempty"`
	Status   int                  `json:"status,omitempty"`
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg wsRequest
		if err := c.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("Failed to read WebSocket message", zap.Error(err))
			}
			return
		}

		if msg.Type != "query" {
			continue
		}

		if err := h.runQuery(c, msg.Question); err != nil {
			logger.Warn("Failed to write WebSocket message", zap.Error(err))
			return
		}
	}
}

// jsonWriter is the part of *websocket.Conn runQuery writes through.
type jsonWriter interface {
	WriteJSON(v interface{}) error
}

// runQuery only returns an error when the connection can no longer be written.
// A failed write cancels the run so no further model calls are made.
func (h *WebSocketHandler) runQuery(c jsonWriter, question string) error {
	question, err := validation.SanitizeQuestion(question, h.maxQuestionLength)
	if err != nil {
		return c.WriteJSON(wsMessage{Type: "error", Error: err.Error(), Status: 400})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var writeErr error
	observer := func(ev query.Event) {
		if writeErr != nil {
			return
		}
		if writeErr = c.WriteJSON(wsMessage{Type: "progress", Event: &ev}); writeErr != nil {
			cancel()
		}
	}

	response, err := h.queryEngine.ProcessQuery(ctx, query.QueryRequest{
		Question: question,
		Observer: observer,
	})
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		return c.WriteJSON(wsMessage{Type: "error", Error: err.Error(), Status: StatusFor(err)})
	}

	return c.WriteJSON(wsMessage{Type: "complete", Response: response})
}
