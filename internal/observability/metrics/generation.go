package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GenerationMetrics tracks the retrieval and generation pipeline. All
// observe methods are nil-safe so usecases can run without a registry in
// tests.
type GenerationMetrics struct {
	registry *prometheus.Registry
	service  string

	generateTotal      *prometheus.CounterVec
	generateDuration   *prometheus.HistogramVec
	questionsProduced  *prometheus.CounterVec
	retrievalTotal     *prometheus.CounterVec
	retrievalTopCounts *prometheus.HistogramVec
}

func NewGenerationMetrics(service string) *GenerationMetrics {
	registry := prometheus.NewRegistry()

	generateTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "examgen",
			Subsystem: "generation",
			Name:      "requests_total",
			Help:      "Total generation requests by mode and status.",
		},
		[]string{"service", "mode", "status"},
	)
	generateDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "examgen",
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Generation request duration in seconds by mode and status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "mode", "status"},
	)
	questionsProduced := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "examgen",
			Subsystem: "generation",
			Name:      "questions_total",
			Help:      "Total questions produced by mode.",
		},
		[]string{"service", "mode"},
	)
	retrievalTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "examgen",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total retrieval calls by status.",
		},
		[]string{"service", "status"},
	)
	retrievalTopCounts := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "examgen",
			Subsystem: "retrieval",
			Name:      "candidates",
			Help:      "Distribution of candidates returned per retrieval call.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34, 55},
		},
		[]string{"service"},
	)

	registry.MustRegister(generateTotal, generateDuration, questionsProduced, retrievalTotal, retrievalTopCounts)

	return &GenerationMetrics{
		registry:           registry,
		service:            service,
		generateTotal:      generateTotal,
		generateDuration:   generateDuration,
		questionsProduced:  questionsProduced,
		retrievalTotal:     retrievalTotal,
		retrievalTopCounts: retrievalTopCounts,
	}
}

func (m *GenerationMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *GenerationMetrics) ObserveGeneration(mode, status string, duration time.Duration, produced int) {
	if m == nil {
		return
	}
	m.generateTotal.WithLabelValues(m.service, mode, status).Inc()
	m.generateDuration.WithLabelValues(m.service, mode, status).Observe(duration.Seconds())
	if produced > 0 {
		m.questionsProduced.WithLabelValues(m.service, mode).Add(float64(produced))
	}
}

func (m *GenerationMetrics) ObserveRetrieval(status string, candidates int) {
	if m == nil {
		return
	}
	m.retrievalTotal.WithLabelValues(m.service, status).Inc()
	if status == "ok" {
		m.retrievalTopCounts.WithLabelValues(m.service).Observe(float64(candidates))
	}
}
