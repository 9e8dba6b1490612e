package ratelimit

import (
	"math/rand"
	"net/http"
	"sync"
)

// DefaultUserAgents is the rotation pool used when the configuration does
// not supply one. Current desktop browser strings; stale entries are worse
// than none because they stand out in server logs.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-US,en;q=0.8,es;q=0.7",
	"en-GB,en;q=0.9",
}

const (
	marketReferer      = "https://steamcommunity.com/market/"
	refererProbability = 0.3
)

// Identity is one client fingerprint: a user-agent plus its header template.
type Identity struct {
	UserAgent string
	Headers   map[string]string
}

// Rotator cycles through a finite, ordered identity pool so successive
// requests don't share a fingerprint. The only state is the rotation index.
type Rotator struct {
	mu    sync.Mutex
	pool  []Identity
	index int
	rand  func() float64
}

// NewRotator builds a rotator from the given user-agent pool, falling back
// to DefaultUserAgents when empty.
func NewRotator(userAgents []string) *Rotator {
	if len(userAgents) == 0 {
		userAgents = DefaultUserAgents
	}

	pool := make([]Identity, 0, len(userAgents))
	for _, ua := range userAgents {
		pool = append(pool, Identity{
			UserAgent: ua,
			Headers:   browserHeaderTemplate(),
		})
	}

	return &Rotator{
		pool: pool,
		rand: rand.Float64,
	}
}

// Next advances the rotation index and returns the identity at that position.
func (r *Rotator) Next() Identity {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.index = (r.index + 1) % len(r.pool)
	return r.pool[r.index]
}

// BuildHeaders composes a realistic outbound header set from the next
// identity plus randomized optional fields: one of several accept-language
// values and an occasional market referer.
func (r *Rotator) BuildHeaders() http.Header {
	id := r.Next()

	h := http.Header{}
	for k, v := range id.Headers {
		h.Set(k, v)
	}
	h.Set("User-Agent", id.UserAgent)

	r.mu.Lock()
	lang := acceptLanguages[int(r.rand()*float64(len(acceptLanguages)))%len(acceptLanguages)]
	withReferer := r.rand() < refererProbability
	r.mu.Unlock()

	h.Set("Accept-Language", lang)
	if withReferer {
		h.Set("Referer", marketReferer)
	}

	return h
}

// SetRand overrides the random source (for testing).
func (r *Rotator) SetRand(f func() float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = f
}

// browserHeaderTemplate returns the static part of a browser-like header
// set. Accept-Encoding is left to the transport so net/http keeps handling
// decompression transparently.
func browserHeaderTemplate() map[string]string {
	return map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Cache-Control":             "max-age=0",
	}
}
