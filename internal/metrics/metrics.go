// Package metrics holds the Prometheus collectors shared by the HTTP layer and the
// generation workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "generations_total",
		Help: "Generation requests by outcome (completed, failed, quota_exceeded).",
	}, []string{"outcome"})

	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_calls_total",
		Help: "Calls to code generation providers by provider and outcome.",
	}, []string{"provider", "outcome"})

	ArtifactsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "artifacts_stored_total",
		Help: "Generated files written to blob storage.",
	})
)
