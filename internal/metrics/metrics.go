// Package metrics holds the Prometheus instrumentation of the session worker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline
	SessionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summarizer_sessions_processed_total",
			Help: "Total number of sessions run through the end-of-session pipeline",
		},
		[]string{"status"}, // "success", "failure"
	)

	PipelineStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summarizer_pipeline_step_duration_seconds",
			Help:    "Duration of each end-of-session pipeline step in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)

	PipelineStepErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summarizer_pipeline_step_errors_total",
			Help: "Total number of failed end-of-session pipeline steps",
		},
		[]string{"step"},
	)

	// Preprocessing
	EventsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summarizer_events_processed_total",
			Help: "Total number of raw recording events preprocessed",
		},
	)

	EventsDownsampled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summarizer_events_downsampled_total",
			Help: "Total number of raw recording events dropped by the downsampler",
		},
	)

	// Summarization
	SummaryChunks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summarizer_summary_chunks",
			Help:    "Number of chunks a session was split into for summarization",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	ChunkFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summarizer_chunk_failures_total",
			Help: "Total number of chunk summaries that failed and were left empty",
		},
	)

	// LLM
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summarizer_llm_requests_total",
			Help: "Total number of language model requests",
		},
		[]string{"operation", "status"}, // operation: "complete", "embed"
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summarizer_llm_request_duration_seconds",
			Help:    "Duration of language model requests in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "summarizer_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Worker
	InactiveSessionsFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summarizer_inactive_sessions_found_total",
			Help: "Total number of inactive sessions found by the poll loop",
		},
	)

	SessionEndedMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summarizer_session_ended_messages_total",
			Help: "Total number of session-ended notifications consumed",
		},
		[]string{"status"}, // "handled", "invalid", "failed"
	)
)

// RecordStep observes one pipeline step.
func RecordStep(step string, start time.Time, err error) {
	PipelineStepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	if err != nil {
		PipelineStepErrors.WithLabelValues(step).Inc()
	}
}

// RecordSession counts one finished pipeline run.
func RecordSession(err error) {
	if err != nil {
		SessionsProcessed.WithLabelValues("failure").Inc()
		return
	}
	SessionsProcessed.WithLabelValues("success").Inc()
}

// RecordLLMRequest observes one language model call.
func RecordLLMRequest(operation string, duration time.Duration, err error) {
	LLMRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	LLMRequests.WithLabelValues(operation, status).Inc()
}
