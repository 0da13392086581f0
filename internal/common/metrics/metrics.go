// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_turns_processed_total",
			Help: "Total number of conversation turns processed, by step the turn started in",
		},
		[]string{"step"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "intake_turn_duration_seconds",
			Help: "Duration of turn processing in seconds",
		},
		[]string{"step"},
	)

	ValidationRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_validation_rejections_total",
			Help: "Total number of field values rejected by business rules",
		},
		[]string{"field"},
	)

	ApplicationsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_applications_saved_total",
			Help: "Total number of applications persisted",
		},
		[]string{"type", "backend"},
	)

	ApplicationSaveFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_application_save_failures_total",
			Help: "Total number of failed application save attempts",
		},
		[]string{"backend"},
	)

	AIFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_ai_fallbacks_total",
			Help: "Total number of turns answered by the AI responder",
		},
	)

	AIFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_ai_failures_total",
			Help: "Total number of AI responder calls that failed and were degraded to an apology",
		},
	)
)
