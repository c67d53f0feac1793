package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pdf-agent/backend/internal/ingestion"
	"github.com/pdf-agent/backend/internal/query"
	"github.com/pdf-agent/backend/pkg/circuitbreaker"
)

// StatusFor maps a terminal pipeline error to an HTTP status.
func StatusFor(err error) int {
	var (
		notFound *ingestion.NotFoundError
		noDocs   *query.NoDocumentsFoundError
		noAnswer *query.NoAnswerProducedError
	)
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &notFound), errors.As(err, &noDocs):
		return fiber.StatusNotFound
	case errors.As(err, &noAnswer):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
