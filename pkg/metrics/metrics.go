// Package metrics provides the centralized Prometheus metrics registry for
// the market crawler. All metrics are defined in their respective packages
// (ratelimit, client, crawl, cache) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the crawler.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - market_requests_in_window (Gauge): Requests currently inside the sliding window
//   - market_consecutive_failures (Gauge): Current consecutive failure streak
//   - market_degraded_service (Gauge): 1 while the session considers the service degraded
//   - market_rate_limited_total (Counter): 429 responses recorded in the ledger
//   - market_gate_waits_total (Counter): Admissions that had to wait for window capacity
//   - market_gate_wait_seconds (Histogram): Time spent waiting at the admission gate
//
// Request Metrics (pkg/client):
//   - market_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - market_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - market_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - market_retries_total{error_class} (Counter): Retry attempts by error class
//   - market_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - market_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Crawl Metrics (pkg/crawl):
//   - market_crawls_total{status} (Counter): Crawl sessions by terminal status (complete, aborted)
//   - market_crawl_pages_total (Counter): Listing pages fetched across all crawls
//   - market_crawl_items_total (Counter): Listings gathered across all crawls
//
// Cache Metrics (pkg/cache):
//   - market_cache_hits_total (Counter): Price cache hits
//   - market_cache_misses_total (Counter): Price cache misses
//   - market_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(market_cache_hits_total[5m])) /
//   (sum(rate(market_cache_hits_total[5m])) + sum(rate(market_cache_misses_total[5m])))
//
//   # Degraded Sessions
//   market_degraded_service > 0
//
//   # Request Error Rate
//   rate(market_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(market_request_duration_seconds_bucket[5m]))
//
//   # Crawl Abort Rate
//   rate(market_crawls_total{status="aborted"}[1h]) / rate(market_crawls_total[1h])
