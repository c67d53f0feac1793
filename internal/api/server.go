// Package api assembles the HTTP surface: middleware, routes and handlers.
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/pdf-agent/backend/internal/api/handlers"
	"github.com/pdf-agent/backend/internal/metrics"
	"github.com/pdf-agent/backend/internal/middleware/ratelimit"
	"github.com/pdf-agent/backend/internal/middleware/security"
	"github.com/pdf-agent/backend/internal/middleware/validation"
	"github.com/pdf-agent/backend/internal/query"
	"github.com/pdf-agent/backend/pkg/config"
	"github.com/pdf-agent/backend/pkg/logger"
)

// NewApp builds the fiber app. The returned stop func releases background
// resources and should be called after the app shuts down.
func NewApp(cfg *config.Config, engine handlers.QueryProcessor, locator query.Locator) (*fiber.App, func()) {
	app := fiber.New(fiber.Config{
		AppName:      "pdf-agent",
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Logging.Level == "debug",
	}))

	stop := func() {}
	var limit fiber.Handler = func(c *fiber.Ctx) error { return c.Next() }
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(ratelimit.Config{
			MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
			Logger:               logger.GetLogger(),
		})
		limit = limiter.Middleware()
		stop = limiter.Stop
	}

	queryHandler := handlers.NewQueryHandler(engine, cfg.Agent.MaxQuestionLength)
	documentHandler := handlers.NewDocumentHandler(locator)
	wsHandler := handlers.NewWebSocketHandler(engine, cfg.Agent.MaxQuestionLength)

	api := app.Group("/api/v1")

	api.Post("/query", limit, validation.Middleware(validation.Config{
		MaxQuestionLength: cfg.Agent.MaxQuestionLength,
		Logger:            logger.GetLogger(),
	}), queryHandler.HandleQuery)

	api.Get("/documents", documentHandler.ListDocuments)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"provider": cfg.LLM.Provider,
			"model":    cfg.LLM.Model,
			"time":     time.Now().Unix(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", limit, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/query", websocket.New(wsHandler.HandleConnection))

	return app, stop
}
