package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdf_agent_query_duration_seconds",
			Help:    "End-to-end pipeline duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_agent_query_total",
			Help: "Total number of questions processed, by outcome",
		},
		[]string{"status"},
	)

	CandidateOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_agent_candidate_outcomes_total",
			Help: "Per-PDF pipeline stage outcomes",
		},
		[]string{"stage", "outcome"},
	)

	RankingFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pdf_agent_ranking_fallback_total",
			Help: "Runs that fell back to folder order because ranking failed",
		},
	)

	BestScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdf_agent_best_score",
			Help:    "Evaluation score of the returned answer (0-10)",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)

	CandidatesPerQuery = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdf_agent_candidates_per_query",
			Help:    "Number of PDFs located per question",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_agent_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	LLMCircuitState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pdf_agent_llm_circuit_state",
			Help: "LLM circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"provider"},
	)
)

var initOnce sync.Once

// Init registers the collectors with the default registry. Collectors work
// unregistered, so packages may record before (or without) Init.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(QueryDuration)
		prometheus.MustRegister(QueryTotal)
		prometheus.MustRegister(CandidateOutcomes)
		prometheus.MustRegister(RankingFallbacks)
		prometheus.MustRegister(BestScore)
		prometheus.MustRegister(CandidatesPerQuery)
		prometheus.MustRegister(LLMTokensUsed)
		prometheus.MustRegister(LLMCircuitState)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
