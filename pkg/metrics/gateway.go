package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// GatewayMetrics records outbound payment provider calls.
type GatewayMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewGatewayMetrics registers the gateway metrics on the provided registerer.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		return &GatewayMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_gateway_request_duration_seconds",
		Help:    "Duration of payment provider calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"gateway", "operation"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_gateway_requests_total",
		Help: "Payment provider calls by outcome.",
	}, []string{"gateway", "operation", "outcome"})
	reg.MustRegister(duration, requests)
	return &GatewayMetrics{
		duration: duration,
		requests: requests,
	}
}

// Observe records one provider call.
func (g *GatewayMetrics) Observe(gateway, operation string, elapsed time.Duration, err error) {
	if g == nil || g.duration == nil || g.requests == nil {
		return
	}
	gateway = normalizeLabel(gateway)
	operation = normalizeLabel(operation)
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	g.duration.WithLabelValues(gateway, operation).Observe(elapsed.Seconds())
	g.requests.WithLabelValues(gateway, operation, outcome).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
