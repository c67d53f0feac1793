package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pdf-agent/backend/internal/answer"
	"github.com/pdf-agent/backend/internal/evaluation"
	"github.com/pdf-agent/backend/internal/ingestion"
	"github.com/pdf-agent/backend/internal/llm"
	"github.com/pdf-agent/backend/internal/ranking"
	"github.com/pdf-agent/backend/internal/query"
	"github.com/pdf-agent/backend/pkg/config"
	appLogger "github.com/pdf-agent/backend/pkg/logger"
)

// runtime is everything a command needs to answer questions.
type runtime struct {
	cfg     *config.Config
	locator *ingestion.Locator
	engine  *query.Engine
	closers []io.Closer
}

// loadConfig reads and validates configuration. logOutput, when set, overrides
// the configured log destination.
func loadConfig(logOutput string) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logOutput != "" {
		cfg.Logging.OutputPath = logOutput
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

func newRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	llmClient, err := llm.NewClient(ctx, llm.Options{
		Provider:                cfg.LLM.Provider,
		Model:                   cfg.LLM.Model,
		APIKey:                  cfg.LLM.APIKey,
		BaseURL:                 cfg.LLM.BaseURL,
		Temperature:             cfg.LLM.Temperature,
		MaxTokens:               cfg.LLM.MaxTokens,
		Timeout:                 time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		BreakerFailureThreshold: cfg.LLM.Breaker.FailureThreshold,
		BreakerCooldown:         time.Duration(cfg.LLM.Breaker.CooldownSec) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	rt := &runtime{
		cfg:     cfg,
		locator: ingestion.NewLocator(cfg.Agent.PDFFolder),
	}
	if closer, ok := llmClient.(io.Closer); ok {
		rt.closers = append(rt.closers, closer)
	}

	rt.engine = query.NewEngine(query.Components{
		Locator:   rt.locator,
		Ranker:    ranking.NewRanker(llmClient),
		Extractor: ingestion.NewPDFExtractor(),
		Generator: answer.NewGenerator(llmClient, cfg.Agent.MaxDocumentChars),
		Evaluator: evaluation.NewEvaluator(llmClient),
	}, cfg.Agent.GoodEnoughScore)

	appLogger.Info("Pipeline ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
		zap.String("pdf_folder", cfg.Agent.PDFFolder),
	)

	return rt, nil
}

func (rt *runtime) Close() {
	for _, c := range rt.closers {
		if err := c.Close(); err != nil {
			appLogger.Warn("Failed to close client", zap.Error(err))
		}
	}
	appLogger.Sync()
}
