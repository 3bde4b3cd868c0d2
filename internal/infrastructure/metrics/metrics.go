package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by route and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supportchat",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration observes HTTP request latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "supportchat",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "route"},
	)

	// ChatTurnsTotal counts chat turns by final status.
	ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supportchat",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total chat turns handled",
		},
		[]string{"status"},
	)

	// ChatTurnDuration observes end-to-end chat turn latency.
	ChatTurnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "supportchat",
			Subsystem: "chat",
			Name:      "turn_duration_seconds",
			Help:      "End-to-end chat turn duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// LLMAttemptsTotal counts chat-completion attempts by outcome.
	LLMAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supportchat",
			Subsystem: "llm",
			Name:      "attempts_total",
			Help:      "Chat-completion attempts by outcome",
		},
		[]string{"outcome"},
	)

	// LLMRequestDuration observes single-attempt latency against the upstream API.
	LLMRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "supportchat",
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Upstream chat-completion request duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// FAQSearchDuration observes knowledge-base search latency.
	FAQSearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "supportchat",
			Subsystem: "faq",
			Name:      "search_duration_seconds",
			Help:      "Hybrid FAQ search duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2},
		},
	)

	// CacheHits counts cache hits by cache type.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supportchat",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total cache hits",
		},
		[]string{"cache_type"},
	)

	// CacheMisses counts cache misses by cache type.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supportchat",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total cache misses",
		},
		[]string{"cache_type"},
	)

	// CacheErrors counts swallowed cache failures.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supportchat",
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Total cache operations that failed and were degraded to misses",
		},
		[]string{"operation"},
	)
)
