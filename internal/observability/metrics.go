// Package observability provides Prometheus metrics and OpenTelemetry tracing setup.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModerationDecisions counts moderation passes by composite outcome.
	ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "governance_moderation_decisions_total",
		Help: "Total number of moderation decisions by outcome",
	}, []string{"outcome"})

	// ClassifierCalls counts classification gateway calls by backend and result
	// (ok, flagged, unavailable).
	ClassifierCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "governance_classifier_calls_total",
		Help: "Total classification gateway calls by backend and result",
	}, []string{"backend", "result"})

	// ClassifierLatency records external classifier latency in seconds.
	ClassifierLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "governance_classifier_latency_seconds",
		Help:    "External classifier call latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// OriginalitySimilarity records the best similarity score per originality check.
	OriginalitySimilarity = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "governance_originality_similarity",
		Help:    "Best similarity score observed per originality check",
		Buckets: []float64{0.5, 0.6, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1.0},
	})

	// AppealResolutions counts appeal resolutions by final jury decision.
	AppealResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "governance_appeal_resolutions_total",
		Help: "Total appeal resolutions by jury decision",
	}, []string{"decision"})

	// PromotionApprovals counts promotion request transitions by terminal status.
	PromotionApprovals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "governance_promotion_transitions_total",
		Help: "Total promotion request transitions by terminal status",
	}, []string{"status"})

	// TrustTasksProcessed counts trust recalculation tasks by sweep result.
	TrustTasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "governance_trust_tasks_processed_total",
		Help: "Total trust recalculation tasks processed by result",
	}, []string{"result"})

	// TrustQueueDepth is the gauge of unprocessed trust recalculation tasks.
	TrustQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "governance_trust_queue_depth",
		Help: "Number of unprocessed trust recalculation tasks",
	})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "governance_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)
