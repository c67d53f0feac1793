package validation

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeQuestion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int
		want    string
		wantErr error
	}{
		{"plain", "What is covered?", 100, "What is covered?", nil},
		{"trims and strips NUL", "  What\x00 is covered?\n", 100, "What is covered?", nil},
		{"empty", "   ", 100, "", ErrEmptyQuestion},
		{"only NUL", "\x00\x00", 100, "", ErrEmptyQuestion},
		{"too long", strings.Repeat("a", 11), 10, "", ErrQuestionTooLong},
		{"length counts characters", strings.Repeat("é", 10), 10, strings.Repeat("é", 10), nil},
		{"no limit", strings.Repeat("a", 5000), 0, strings.Repeat("a", 5000), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeQuestion(tt.input, tt.max)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(Config{MaxQuestionLength: 20}))
	app.Post("/query", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(QuestionKey).(string))
	})
	app.Get("/query", func(c *fiber.Ctx) error {
		return c.SendString("get")
	})
	return app
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		wantStatus  int
		wantBody    string
	}{
		{"valid", fiber.MethodPost, fiber.MIMEApplicationJSON, `{"question": " hi "}`, fiber.StatusOK, "hi"},
		{"missing question", fiber.MethodPost, fiber.MIMEApplicationJSON, `{}`, fiber.StatusBadRequest, "question is required"},
		{"too long", fiber.MethodPost, fiber.MIMEApplicationJSON, `{"question": "` + strings.Repeat("x", 21) + `"}`, fiber.StatusBadRequest, "maximum length"},
		{"bad json", fiber.MethodPost, fiber.MIMEApplicationJSON, `{"question":`, fiber.StatusBadRequest, "Invalid JSON"},
		{"wrong content type", fiber.MethodPost, "text/csv", `a,b`, fiber.StatusUnsupportedMediaType, ErrUnsupportedMedia.Error()},
		{"get passes through", fiber.MethodGet, "", "", fiber.StatusOK, "get"},
	}

	app := newApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/query", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set(fiber.HeaderContentType, tt.contentType)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), tt.wantBody)
		})
	}
}
