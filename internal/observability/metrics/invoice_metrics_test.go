package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSubmission(t *testing.T) {
	m := NewInvoiceMetrics(prometheus.NewRegistry())

	m.ObserveSubmission(OutcomeSucceeded, 120*time.Millisecond)
	m.ObserveSubmission(OutcomeSucceeded, 80*time.Millisecond)
	m.ObserveSubmission(OutcomeValidation, 0)

	if got := testutil.ToFloat64(m.Submissions(OutcomeSucceeded)); got != 2 {
		t.Fatalf("succeeded = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Submissions(OutcomeValidation)); got != 1 {
		t.Fatalf("validation = %v, want 1", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *InvoiceMetrics
	m.ObserveSubmission(OutcomeUpstream, time.Second)
	m.ObserveCatalogFailure("clients")
	m.SetActiveSessions(3)
}
