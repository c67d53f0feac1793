package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuestionKey is the fiber.Ctx local holding the sanitized question.
const QuestionKey = "question"

var (
	ErrEmptyQuestion    = errors.New("question is required")
	ErrQuestionTooLong  = errors.New("question exceeds maximum length")
	ErrUnsupportedMedia = errors.New("unsupported content type")
)

type Config struct {
	MaxQuestionLength   int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// SanitizeQuestion trims the question and strips NUL bytes, then enforces
// presence and a maximum length in characters (0 = unlimited).
func SanitizeQuestion(question string, maxLength int) (string, error) {
	question = strings.ReplaceAll(question, "\x00", "")
	question = strings.TrimSpace(question)

	if question == "" {
		return "", ErrEmptyQuestion
	}
	if maxLength > 0 && utf8.RuneCountInString(question) > maxLength {
		return "", fmt.Errorf("%w (%d characters)", ErrQuestionTooLong, maxLength)
	}
	return question, nil
}

// Middleware validates question submissions before they reach the pipeline.
// The sanitized question is stored under QuestionKey.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxQuestionLength == 0 {
		cfg.MaxQuestionLength = 2000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{fiber.MIMEApplicationJSON}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		if contentType := c.Get(fiber.HeaderContentType); contentType != "" && !allowed(contentType, cfg.AllowedContentTypes) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": ErrUnsupportedMedia.Error(),
			})
		}

		var req struct {
			Question string `json:"question"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON format",
			})
		}

		question, err := SanitizeQuestion(req.Question, cfg.MaxQuestionLength)
		if err != nil {
			cfg.Logger.Debug("Rejected question",
				zap.String("ip", c.IP()),
				zap.Error(err),
			)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals(QuestionKey, question)
		return c.Next()
	}
}

func allowed(contentType string, types []string) bool {
	for _, t := range types {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}
