package client

import "net/http"

// ErrorClass tags the outcome of a failed request attempt. The retry
// decision is a pure function of the tag, never of error types bubbling up
// from the transport.
type ErrorClass string

const (
	// ErrorClassClient covers non-retryable statuses: the request itself is
	// wrong, so retrying only burns budget.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer covers the retryable 5xx set (500, 502, 503, 504).
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit covers 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork covers transport failures with no HTTP response.
	ErrorClassNetwork ErrorClass = "network"
)

// retryableServerStatuses is the exact 5xx set treated as transient.
// Other 5xx codes (501, 505, ...) signal a broken request, not an
// overloaded server, and fail fast.
var retryableServerStatuses = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Classify maps a response status (or transport error) to its error class.
// Only call for non-200 outcomes.
func Classify(statusCode int, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case retryableServerStatuses[statusCode]:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}

// Retryable reports whether an error class should be retried: "the server
// is overloaded or throttling" retries, "the request is invalid" does not.
func (c ErrorClass) Retryable() bool {
	switch c {
	case ErrorClassRateLimit, ErrorClassServer, ErrorClassNetwork:
		return true
	default:
		return false
	}
}
