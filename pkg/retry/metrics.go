package retry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for retry activity.
// A nil *Metrics records nothing.
type Metrics struct {
	Attempts     prometheus.Counter
	Retries      *prometheus.CounterVec
	Calls        *prometheus.CounterVec
	RetryDelay   prometheus.Histogram
	CallsRetries prometheus.Histogram
}

// NewMetrics creates retry metrics under the given namespace
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Attempts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "attempts_total",
				Help:      "Total number of transport invocations",
			},
		),

		Retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "retries_total",
				Help:      "Total number of scheduled retries by failure reason",
			},
			[]string{"reason"},
		),

		Calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "calls_total",
				Help:      "Total number of finished calls by result (success, terminal, exhausted, aborted)",
			},
			[]string{"result"},
		),

		RetryDelay: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "delay_seconds",
				Help:      "Scheduled wait before a retry in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 30, 60},
			},
		),

		CallsRetries: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "call_retries",
				Help:      "Number of retries a finished call needed",
				Buckets:   []float64{0, 1, 2, 3, 5, 8},
			},
		),
	}
}

// Register registers all collectors with reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.Attempts,
		m.Retries,
		m.Calls,
		m.RetryDelay,
		m.CallsRetries,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) attempt() {
	if m == nil {
		return
	}
	m.Attempts.Inc()
}

func (m *Metrics) retry(o Outcome, delay time.Duration) {
	if m == nil {
		return
	}
	m.Retries.WithLabelValues(retryReason(o)).Inc()
	m.RetryDelay.Observe(delay.Seconds())
}

func (m *Metrics) finish(r result, retries int) {
	if m == nil {
		return
	}
	m.Calls.WithLabelValues(r.String()).Inc()
	m.CallsRetries.Observe(float64(retries))
}

// retryReason labels a retriable outcome by status code or "transport_error"
func retryReason(o Outcome) string {
	if o.Err != nil || o.Response == nil {
		return "transport_error"
	}
	return strconv.Itoa(o.Response.StatusCode)
}
