package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pdf-agent/backend/internal/middleware/validation"
	"github.com/pdf-agent/backend/internal/query"
	"github.com/pdf-agent/backend/pkg/logger"
)

type QueryProcessor interface {
	ProcessQuery(ctx context.Context, req query.QueryRequest) (*query.QueryResponse, error)
}

type QueryHandler struct {
	queryEngine       QueryProcessor
	maxQuestionLength int
}

func NewQueryHandler(queryEngine QueryProcessor, maxQuestionLength int) *QueryHandler {
	return &QueryHandler{
		queryEngine:       queryEngine,
		maxQuestionLength: maxQuestionLength,
	}
}

func (h *QueryHandler) HandleQuery(c *fiber.Ctx) error {
	question, ok := c.Locals(validation.QuestionKey).(string)
	if !ok {
		var req struct {
			Question string `json:"question"`
		}
		if err := c.BodyParser(&req); err != nil {
			logger.Error("Failed to parse request body", zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		var err error
		question, err = validation.SanitizeQuestion(req.Question, h.maxQuestionLength)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	response, err := h.queryEngine.ProcessQuery(c.UserContext(), query.QueryRequest{Question: question})
	if err != nil {
		status := StatusFor(err)
		if status == fiber.StatusInternalServerError {
			logger.Error("Failed to process query", zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(response)
}
