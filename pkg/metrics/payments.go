package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records processor call outcomes and latencies per operation.
type PaymentMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	conflicts *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_operation_duration_seconds",
		Help:    "Duration of payment operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_operation_success",
		Help: "Successful payment operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_operation_failure",
		Help: "Failed payment operations.",
	}, []string{"operation", "code"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_state_conflicts",
		Help: "Operations rejected because the intent was in a terminal state.",
	}, []string{"operation"})
	reg.MustRegister(duration, success, failure, conflicts)
	return &PaymentMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		conflicts: conflicts,
	}
}

// ObserveDuration records the duration for the named operation.
func (p *PaymentMetrics) ObserveDuration(operation string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (p *PaymentMetrics) IncSuccess(operation string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the operation and error code.
func (p *PaymentMetrics) IncFailure(operation, code string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}

// IncStateConflict increments the state-conflict counter for the named operation.
func (p *PaymentMetrics) IncStateConflict(operation string) {
	if p == nil || p.conflicts == nil {
		return
	}
	p.conflicts.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
