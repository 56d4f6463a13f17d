// Package metrics exposes Prometheus instrumentation for payment operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PaymentsCreated counts successful payment creations.
	PaymentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagoflow_payments_created_total",
		Help: "Payments created, by provider, method and mode.",
	}, []string{"provider", "method", "mode"})

	// WebhookEvents counts processed webhook events.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagoflow_webhook_events_total",
		Help: "Webhook events processed, by provider and canonical status.",
	}, []string{"provider", "status"})

	// UpstreamErrors counts failed gateway calls.
	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagoflow_upstream_errors_total",
		Help: "Failed gateway calls, by provider and operation.",
	}, []string{"provider", "operation"})

	providerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pagoflow_provider_request_duration_seconds",
		Help:    "Latency of gateway operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "operation"})
)

// ObserveProviderRequest records the duration of one gateway operation.
func ObserveProviderRequest(provider, operation string, d time.Duration) {
	providerRequestDuration.WithLabelValues(provider, operation).Observe(d.Seconds())
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
