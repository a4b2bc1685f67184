// Package metrics exposes Prometheus collectors for the question pipeline
// and a per-question JSON record for log-based analysis.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	questionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_questions_total",
		Help: "Questions processed, by classified intent and route taken",
	}, []string{"intent", "route"})

	cacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_cache_requests_total",
		Help: "Cache lookups by outcome (hit/miss)",
	}, []string{"outcome"})

	retrieverLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_retriever_latency_seconds",
		Help:    "Latency of per-collection retrieval calls",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.3, 0.5, 0.8, 1.2, 2, 5},
	}, []string{"source"})

	retrieverResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_retriever_results",
		Help:    "Number of candidates returned by a collection",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	}, []string{"source"})

	fusionLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_fusion_latency_seconds",
		Help:    "Latency of candidate merging",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"strategy"})

	llmLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_llm_latency_seconds",
		Help:    "Latency of LLM calls by operation (classify/optimize/generate)",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30},
	}, []string{"operation"})

	answerSources = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "assistant_answer_sources",
		Help:    "Number of sources cited per generated answer",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 8, 10},
	})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(questionsTotal, cacheRequests, retrieverLatency,
			retrieverResults, fusionLatency, llmLatency, answerSources)
	})
}

// IncQuestion counts one processed question.
func IncQuestion(intent, route string) {
	ensureRegistered()
	questionsTotal.WithLabelValues(intent, route).Inc()
}

// IncCache counts one cache lookup.
func IncCache(hit bool) {
	ensureRegistered()
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	cacheRequests.WithLabelValues(outcome).Inc()
}

// ObserveRetriever records latency and result size for one collection call.
func ObserveRetriever(source string, seconds float64, results int) {
	ensureRegistered()
	retrieverLatency.WithLabelValues(source).Observe(seconds)
	retrieverResults.WithLabelValues(source).Observe(float64(results))
}

// ObserveFusion records merge latency for a strategy.
func ObserveFusion(strategy string, seconds float64) {
	ensureRegistered()
	fusionLatency.WithLabelValues(strategy).Observe(seconds)
}

// ObserveLLM records latency of one LLM call.
func ObserveLLM(operation string, seconds float64) {
	ensureRegistered()
	llmLatency.WithLabelValues(operation).Observe(seconds)
}

// ObserveAnswerSources records how many sources an answer cited.
func ObserveAnswerSources(n int) {
	ensureRegistered()
	answerSources.Observe(float64(n))
}

// Collectors exposes the collectors for registration with a custom
// registry. Callers using the default registry never need this.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		questionsTotal, cacheRequests, retrieverLatency,
		retrieverResults, fusionLatency, llmLatency, answerSources,
	}
}
