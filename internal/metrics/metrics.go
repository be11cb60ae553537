package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

var (
	// WebhooksReceived counts incoming order webhooks by outcome
	// (accepted, duplicate, invalid_signature, parse_error, skipped_tagged)
	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_webhooks_received_total",
		Help: "Order webhooks received, by outcome",
	}, []string{"outcome"})

	// DispatchAttempts counts POD dispatch attempts by provider and status
	DispatchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_dispatch_attempts_total",
		Help: "Fulfillment dispatch attempts, by provider and status",
	}, []string{"provider", "status"})

	// DispatchJobsProcessed counts completed dispatch jobs by final status
	DispatchJobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_dispatch_jobs_processed_total",
		Help: "Dispatch jobs processed, by final status",
	}, []string{"status"})

	// PaymentsInitialized counts payment initializations by provider
	PaymentsInitialized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_payments_initialized_total",
		Help: "Payments initialized, by provider",
	}, []string{"provider"})

	// PaymentsVerified counts payment verifications by provider and
	// normalized status
	PaymentsVerified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_payments_verified_total",
		Help: "Payment verifications, by provider and normalized status",
	}, []string{"provider", "status"})

	// RateSyncRuns counts exchange-rate sync runs by outcome
	RateSyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_rate_sync_runs_total",
		Help: "Exchange rate sync runs, by outcome",
	}, []string{"outcome"})

	// ProviderLatency observes POD provider call duration
	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_provider_request_seconds",
		Help:    "POD provider order-creation latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
)

// Handler returns the /metrics endpoint handler
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
