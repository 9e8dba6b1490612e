package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for request pacing.
var (
	windowOccupancy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "market_requests_in_window",
		Help: "Number of requests recorded inside the current sliding window",
	})

	consecutiveFailuresGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "market_consecutive_failures",
		Help: "Length of the current trailing run of failed requests",
	})

	degradedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "market_degraded_service",
		Help: "1 while the remote market service is considered degraded, 0 otherwise",
	})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "market_rate_limited_total",
		Help: "Total number of 429 responses recorded",
	})

	gateWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "market_gate_waits_total",
		Help: "Total number of times the admission gate put a request to sleep",
	})

	gateWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "market_gate_wait_seconds",
		Help:    "Duration of admission gate sleeps in seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 900},
	})
)
