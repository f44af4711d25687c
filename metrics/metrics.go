package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ReportsSubmittedTotal counts successful report submissions by category.
	ReportsSubmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civicreports",
		Subsystem: "catalog",
		Name:      "reports_submitted_total",
		Help:      "Total number of reports accepted into the catalog.",
	}, []string{"category"})

	// StatusUpdatesTotal counts status transitions by target status.
	StatusUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civicreports",
		Subsystem: "catalog",
		Name:      "status_updates_total",
		Help:      "Total number of report status transitions.",
	}, []string{"status"})

	// SubmissionRejectedTotal counts drafts rejected at submission.
	SubmissionRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civicreports",
		Subsystem: "catalog",
		Name:      "submission_rejected_total",
		Help:      "Total number of submissions rejected by validation or preconditions.",
	}, []string{"reason"})

	// GeocodeTimeoutsTotal counts address resolutions exceeding the bound.
	GeocodeTimeoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "civicreports",
		Subsystem: "geocode",
		Name:      "timeouts_total",
		Help:      "Total number of geocoding requests that timed out.",
	})

	// FilterDurationSeconds observes filter pipeline evaluation latency.
	FilterDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "civicreports",
		Subsystem: "catalog",
		Name:      "filter_duration_seconds",
		Help:      "Time spent evaluating the report filter pipeline.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Register registers service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ReportsSubmittedTotal,
			StatusUpdatesTotal,
			SubmissionRejectedTotal,
			GeocodeTimeoutsTotal,
			FilterDurationSeconds,
		)
	})
}
