// Package metrics provides Prometheus metrics for dosewatch: counters,
// gauges, and histograms for predictions, feedback learning, and baseline
// resolution.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Predictions ────────────────────────────────────────────────────────────

// PredictionsServed tracks phase predictions by resulting phase.
var PredictionsServed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dosewatch",
	Name:      "predictions_served_total",
	Help:      "Total phase predictions served.",
}, []string{"phase"})

// ─── Feedback learning ──────────────────────────────────────────────────────

// FeedbackFolded tracks feedback events folded into profiles by status.
var FeedbackFolded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dosewatch",
	Name:      "feedback_folded_total",
	Help:      "Total feedback events folded into profiles.",
}, []string{"status"})

// UpdateShift tracks how far one feedback event moved the duration
// boundary, in minutes. Large shifts on seasoned profiles indicate noisy
// reporting.
var UpdateShift = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "dosewatch",
	Name:      "update_duration_shift_minutes",
	Help:      "Absolute duration-boundary shift per feedback event.",
	Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
})

// ProfileConfidence tracks the confidence of the most recently updated
// profile per substance.
var ProfileConfidence = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "dosewatch",
	Name:      "profile_confidence",
	Help:      "Confidence of the most recently updated profile.",
}, []string{"substance"})

// ─── Baselines ──────────────────────────────────────────────────────────────

// BaselinesResolved tracks baseline resolutions by source
// (reference, learned, fallback).
var BaselinesResolved = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dosewatch",
	Name:      "baselines_resolved_total",
	Help:      "Total baseline profiles resolved.",
}, []string{"source"})
