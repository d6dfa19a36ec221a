package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationAttempts tracks generation attempts per provider and outcome
	GenerationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storywriter_generation_attempts_total",
			Help: "Total number of text generation attempts",
		},
		[]string{"provider", "outcome"},
	)

	// GenerationLatency tracks per-attempt provider latency
	GenerationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storywriter_generation_latency_seconds",
			Help:    "Text generation attempt latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// ModelLoadingWaits counts provider-reported cold-start waits
	ModelLoadingWaits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storywriter_model_loading_waits_total",
			Help: "Total number of model-loading wait hints honored",
		},
		[]string{"provider"},
	)

	// ErrorsTotal tracks classified errors by kind and severity
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storywriter_errors_total",
			Help: "Total number of classified errors",
		},
		[]string{"kind", "severity"},
	)

	// StoriesGenerated counts completed stories per source
	StoriesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storywriter_stories_generated_total",
			Help: "Total number of stories generated",
		},
		[]string{"source"},
	)

	// InterviewSessions counts interview sessions by lifecycle event
	InterviewSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storywriter_interview_sessions_total",
			Help: "Total number of interview session events",
		},
		[]string{"event"},
	)

	// HTTPRequestDuration tracks API request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storywriter_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// StoriesPruned counts stories removed by the retention worker
	StoriesPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storywriter_stories_pruned_total",
			Help: "Total number of stories removed by retention pruning",
		},
	)
)
