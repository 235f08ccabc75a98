package server

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nao1215/crmscan/internal/model"
)

// Outcome labels for the quality check counter.
const (
	outcomeOK         = "ok"
	outcomeStructural = "structural_error"
	outcomeBadRequest = "bad_request"
	outcomeError      = "error"
)

// serverMetrics holds the Prometheus collectors for one server.
//
// Design decision: Collectors register against a per-server registry
// instead of prometheus.DefaultRegisterer because:
// 1. Tests construct several servers in one process, and duplicate
//    registration on the global registry panics
// 2. The /metrics endpoint then serves exactly this server's series
// 3. Nothing else in the binary publishes metrics, so the global
//    registry's convenience buys nothing
type serverMetrics struct {
	// checksTotal counts quality check requests by outcome.
	checksTotal *prometheus.CounterVec

	// checkDuration observes the end-to-end time of successful checks,
	// from first body byte to assembled report.
	checkDuration prometheus.Histogram

	// issuesDetected counts reported issues by severity.
	issuesDetected *prometheus.CounterVec
}

// newServerMetrics creates the collectors and registers them on reg.
func newServerMetrics(reg *prometheus.Registry) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		checksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crmscan",
			Name:      "quality_checks_total",
			Help:      "Quality check requests by outcome.",
		}, []string{"outcome"}),
		checkDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crmscan",
			Name:      "quality_check_duration_seconds",
			Help:      "End-to-end duration of successful quality checks.",
			Buckets:   prometheus.DefBuckets,
		}),
		issuesDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crmscan",
			Name:      "issues_detected_total",
			Help:      "Issues found in analyzed tables by severity.",
		}, []string{"severity"}),
	}
}

// observeReport records the per-severity issue counts of one report.
func (m *serverMetrics) observeReport(report *model.QualityReport) {
	if report == nil {
		return
	}

	for _, severity := range []model.Severity{model.SeverityLow, model.SeverityMedium, model.SeverityHigh} {
		if n := report.CountBySeverity(severity); n > 0 {
			m.issuesDetected.WithLabelValues(strings.ToLower(severity.String())).Add(float64(n))
		}
	}
}
