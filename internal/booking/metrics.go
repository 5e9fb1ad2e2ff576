package booking

import (
	"errors"
	"time"

	"github.com/omriShneor/tailortalk/internal/gcal"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report booking activity.
type Metrics struct {
	outcomes       *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	slotWait       prometheus.Histogram
}

// MustNewMetrics constructs and registers the booking collectors. Passing a
// nil registerer uses the default registry. Registration errors panic.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tailortalk",
			Subsystem: "booking",
			Name:      "outcomes_total",
			Help:      "Terminal booking outcomes by kind.",
		},
		[]string{"outcome"},
	)
	backendLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tailortalk",
			Subsystem: "booking",
			Name:      "backend_call_duration_seconds",
			Help:      "Latency of calendar backend calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)
	slotWait := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tailortalk",
			Subsystem: "booking",
			Name:      "writer_wait_seconds",
			Help:      "Time spent waiting for the single booking writer slot.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	reg.MustRegister(outcomes, backendLatency, slotWait)

	return &Metrics{
		outcomes:       outcomes,
		backendLatency: backendLatency,
		slotWait:       slotWait,
	}
}

func (m *Metrics) observeOutcome(outcome Outcome) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) observeBackend(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.backendLatency.WithLabelValues(operation, backendStatus(err)).Observe(time.Since(started).Seconds())
}

func (m *Metrics) observeWait(started time.Time) {
	if m == nil {
		return
	}
	m.slotWait.Observe(time.Since(started).Seconds())
}

func backendStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isTimeout(err):
		return "timeout"
	case errors.Is(err, gcal.ErrRejected):
		return "rejected"
	default:
		return "unavailable"
	}
}
