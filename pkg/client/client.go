// Package client provides the resilient HTTP executor for the market
// crawler: every GET passes the admission gate, carries a rotated identity,
// and is classified and recorded in the session ledger.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/steamscan/market-crawler/pkg/ratelimit"
)

// Config holds the executor configuration.
type Config struct {
	// BaseURL is the remote host root, e.g. "https://steamcommunity.com".
	BaseURL string

	// Policy drives the session's ledger, gate and backoff calculator.
	Policy ratelimit.Policy

	// Timeout applies per HTTP call; no timeout wraps a whole crawl.
	Timeout time.Duration

	// UserAgents is the identity rotation pool (defaults apply when empty).
	UserAgents []string
}

// DefaultConfig returns a safe default configuration for the live market.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://steamcommunity.com",
		Policy:  ratelimit.DefaultPolicy(),
		Timeout: 30 * time.Second,
	}
}

// Response is one successful HTTP exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Elapsed    time.Duration
}

// Client executes rate-limited, retried GETs against one remote host.
// It owns the session's ledger, gate, backoff calculator and identity
// rotator; run one Client per logical crawl session.
type Client struct {
	httpClient *http.Client
	ledger     *ratelimit.Ledger
	gate       *ratelimit.Gate
	backoff    *ratelimit.Backoff
	identities *ratelimit.Rotator
	config     Config
	logger     zerolog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an executor and the rate limit state it owns.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("rate limit policy: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "market-client").Logger()

	ledger := ratelimit.NewLedger(cfg.Policy, logger)
	backoff := ratelimit.NewBackoff(cfg.Policy)

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		ledger:     ledger,
		gate:       ratelimit.NewGate(ledger, backoff, logger),
		backoff:    backoff,
		identities: ratelimit.NewRotator(cfg.UserAgents),
		config:     cfg,
		logger:     logger,
		sleep:      sleepContext,
	}, nil
}

// Get performs one logical GET against path with the given query, applying
// admission gating, identity rotation, classification and retries. Transient
// outcomes (429, retryable 5xx, network errors) retry with backoff up to the
// policy's budget; any other non-200 surfaces immediately as a terminal
// MarketError.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	fullURL := strings.TrimRight(c.config.BaseURL, "/") + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var lastErr error
	var lastClass ErrorClass

	for attempt := 0; attempt <= c.config.Policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff.ForAttempt(attempt, c.ledger.LastRateLimited())
			retriesTotal.WithLabelValues(string(lastClass)).Inc()
			retryBackoffSeconds.WithLabelValues(string(lastClass)).Observe(delay.Seconds())

			c.logger.Warn().
				Str("endpoint", path).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Str("error_class", string(lastClass)).
				Msg("Retrying request after backoff")

			if err := c.sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrContextCancelled, err)
			}
		}

		if err := c.gate.AwaitAdmission(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrContextCancelled, err)
		}

		resp, err := c.attempt(ctx, path, fullURL)
		if err == nil {
			if attempt > 0 {
				c.logger.Info().
					Str("endpoint", path).
					Int("attempt", attempt+1).
					Msg("Request succeeded after retry")
			}
			return resp, nil
		}

		if IsTerminal(err) {
			return nil, err
		}

		lastErr = err
		if me, ok := err.(*MarketError); ok {
			lastClass = me.Class
		}
	}

	retryExhaustedTotal.WithLabelValues(string(lastClass)).Inc()
	c.logger.Warn().
		Str("endpoint", path).
		Int("max_retries", c.config.Policy.MaxRetries).
		Msg("Retry attempts exhausted")

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, c.config.Policy.MaxRetries+1, lastErr)
}

// attempt issues a single HTTP GET, classifies the outcome and records it
// in the ledger.
func (c *Client) attempt(ctx context.Context, endpoint, fullURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &MarketError{Class: ErrorClassClient, Message: "build request", Err: err}
	}
	req.Header = c.identities.BuildHeaders()

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())

	if err != nil {
		c.ledger.Record(false, elapsed, 0)
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &MarketError{Class: ErrorClassNetwork, Message: "http request failed", Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.ledger.Record(false, elapsed, 0)
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &MarketError{Class: ErrorClassNetwork, Message: "read body", Err: err}
	}

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(httpResp.StatusCode)).Inc()

	if httpResp.StatusCode == http.StatusOK {
		c.ledger.Record(true, elapsed, httpResp.StatusCode)
		return &Response{
			StatusCode: httpResp.StatusCode,
			Header:     httpResp.Header.Clone(),
			Body:       body,
			Elapsed:    elapsed,
		}, nil
	}

	class := Classify(httpResp.StatusCode, nil)
	c.ledger.Record(false, elapsed, httpResp.StatusCode)
	errorsTotal.WithLabelValues(string(class)).Inc()

	c.logger.Warn().
		Str("endpoint", endpoint).
		Int("status_code", httpResp.StatusCode).
		Str("error_class", string(class)).
		Msg("Market request error")

	return nil, &MarketError{
		StatusCode: httpResp.StatusCode,
		Class:      class,
		Message:    httpResp.Status,
	}
}

// Ledger exposes the session ledger for status reporting.
func (c *Client) Ledger() *ratelimit.Ledger {
	return c.ledger
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// sleepContext sleeps for d unless the context is cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
