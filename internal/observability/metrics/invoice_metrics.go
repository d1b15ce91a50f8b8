package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes recorded by InvoiceMetrics
const (
	OutcomeSucceeded  = "succeeded"
	OutcomeValidation = "validation_failed"
	OutcomeUpstream   = "upstream_failed"
	OutcomeDelivery   = "delivery_failed"
	OutcomeRejected   = "rejected_in_flight"
)

// InvoiceMetrics captures invoice composer activity.
type InvoiceMetrics struct {
	submissions     *prometheus.CounterVec
	submitDuration  prometheus.Histogram
	catalogFailures *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// NewInvoiceMetrics creates and registers the composer instruments on reg.
func NewInvoiceMetrics(reg prometheus.Registerer) *InvoiceMetrics {
	m := &InvoiceMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "invoice_submissions_total",
			Help:      "Invoice submit attempts by outcome.",
		}, []string{"outcome"}),
		submitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "console",
			Name:      "invoice_submit_duration_seconds",
			Help:      "Time spent creating an invoice upstream and delivering the slip.",
			Buckets:   prometheus.DefBuckets,
		}),
		catalogFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "catalog_load_failures_total",
			Help:      "Reference data loads that failed, by catalog.",
		}, []string{"catalog"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "console",
			Name:      "active_sessions",
			Help:      "Console sessions currently held in memory.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.submissions, m.submitDuration, m.catalogFailures, m.activeSessions)
	}
	return m
}

// ObserveSubmission records one submit attempt.
func (m *InvoiceMetrics) ObserveSubmission(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.submitDuration.Observe(d.Seconds())
	}
}

// ObserveCatalogFailure records a failed reference data load.
func (m *InvoiceMetrics) ObserveCatalogFailure(catalog string) {
	if m == nil {
		return
	}
	m.catalogFailures.WithLabelValues(catalog).Inc()
}

// SetActiveSessions reports the current number of sessions.
func (m *InvoiceMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// Submissions exposes the submission counter for the given outcome.
func (m *InvoiceMetrics) Submissions(outcome string) prometheus.Counter {
	return m.submissions.WithLabelValues(outcome)
}

// CatalogFailures exposes the failure counter for the given catalog.
func (m *InvoiceMetrics) CatalogFailures(catalog string) prometheus.Counter {
	return m.catalogFailures.WithLabelValues(catalog)
}
