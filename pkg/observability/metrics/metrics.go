// Package metrics defines the Prometheus instrumentation for the scoring
// and redaction pipeline. Metrics are registered once via promauto and
// recorded through small helper functions so call sites never touch
// collector types directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commentsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modguard_comments_scored_total",
			Help: "Total comments scored, labeled by final risk tier.",
		},
		[]string{"tier"},
	)

	escalations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "modguard_escalations_total",
			Help: "Comments escalated to the secondary classifier stage.",
		},
	)

	overrideMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modguard_override_matches_total",
			Help: "Override rule stage matches, labeled by stage name.",
		},
		[]string{"stage"},
	)

	piiHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modguard_pii_hits_total",
			Help: "PII detections, labeled by kind (EMAIL, PHONE, CARD).",
		},
		[]string{"kind"},
	)

	oracleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modguard_oracle_errors_total",
			Help: "Classifier oracle failures, labeled by stage (baseline, secondary).",
		},
		[]string{"stage"},
	)

	scoringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "modguard_scoring_duration_seconds",
			Help:    "End-to-end scoring latency per comment.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		},
	)
)

// RecordCommentScored increments the scored-comment counter for a tier.
func RecordCommentScored(tier string) {
	commentsScored.WithLabelValues(tier).Inc()
}

// RecordEscalation increments the escalation counter.
func RecordEscalation() {
	escalations.Inc()
}

// RecordOverrideMatch increments the override match counter for a stage.
func RecordOverrideMatch(stage string) {
	overrideMatches.WithLabelValues(stage).Inc()
}

// RecordPIIHit increments the PII hit counter for a kind.
func RecordPIIHit(kind string) {
	piiHits.WithLabelValues(kind).Inc()
}

// RecordOracleError increments the oracle failure counter for a stage.
func RecordOracleError(stage string) {
	oracleErrors.WithLabelValues(stage).Inc()
}

// RecordScoringDuration observes one comment's scoring latency in seconds.
func RecordScoringDuration(seconds float64) {
	scoringDuration.Observe(seconds)
}
