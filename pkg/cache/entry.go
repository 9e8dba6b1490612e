// Package cache provides a Redis-backed cache for market price overview
// responses. The price endpoints send no cache validators, so entries carry
// a fixed TTL chosen by the operator instead of server-driven expiry.
package cache

import (
	"time"
)

// Entry is one cached price overview response.
type Entry struct {
	// Data is the raw response body.
	Data []byte `json:"data"`

	// CachedAt is when the response was stored.
	CachedAt time.Time `json:"cached_at"`

	// Expires is when the entry becomes stale.
	Expires time.Time `json:"expires"`
}

// IsExpired returns true if the entry has passed its TTL.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration, or 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
