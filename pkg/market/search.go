package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/steamscan/market-crawler/pkg/cache"
	"github.com/steamscan/market-crawler/pkg/client"
)

const (
	searchPath        = "/market/search/render/"
	priceOverviewPath = "/market/priceoverview/"
)

// Options configures a market client.
type Options struct {
	// AppID selects the game catalog (730 = CS2).
	AppID int

	// Currency is the Steam currency code for price lookups (1 = USD).
	Currency int

	// PriceCache, when set, caches price overview responses.
	PriceCache *cache.Manager
}

// Client exposes the market endpoints through the resilient executor.
type Client struct {
	exec     *client.Client
	appID    int
	currency int
	cache    *cache.Manager
	logger   zerolog.Logger
}

// NewClient binds the market endpoints to an executor.
func NewClient(exec *client.Client, opts Options) *Client {
	if opts.AppID <= 0 {
		opts.AppID = 730
	}
	if opts.Currency <= 0 {
		opts.Currency = 1
	}
	return &Client{
		exec:     exec,
		appID:    opts.AppID,
		currency: opts.Currency,
		cache:    opts.PriceCache,
		logger:   log.With().Str("component", "market").Logger(),
	}
}

// AppID returns the configured catalog app id.
func (c *Client) AppID() int {
	return c.appID
}

// FetchPage fetches one search/render page of count listings starting at
// offset start. An optional query term narrows the listing feed. Decode
// failures and success=false payloads are terminal.
func (c *Client) FetchPage(ctx context.Context, start, count int, query string) (*Page, error) {
	q := url.Values{
		"appid":    {strconv.Itoa(c.appID)},
		"count":    {strconv.Itoa(count)},
		"start":    {strconv.Itoa(start)},
		"norender": {"1"},
	}
	if query != "" {
		q.Set("query", query)
	}

	resp, err := c.exec.Get(ctx, searchPath, q)
	if err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(resp.Body, &sr); err != nil {
		return nil, fmt.Errorf("decode search page at start=%d: %w", start, err)
	}
	if !sr.Success {
		return nil, fmt.Errorf("search page at start=%d returned success=false", start)
	}

	c.logger.Debug().
		Int("start", start).
		Int("results", len(sr.Results)).
		Int("total_count", sr.TotalCount).
		Msg("Fetched search page")

	return &Page{
		Start:      sr.Start,
		TotalCount: sr.TotalCount,
		Listings:   sr.Results,
	}, nil
}

// TotalCount probes the unfiltered listing feed with count=1 to cheaply
// learn the catalog size. The value is advisory: an empty page remains the
// authoritative termination signal for a crawl.
func (c *Client) TotalCount(ctx context.Context) (int, error) {
	page, err := c.FetchPage(ctx, 0, 1, "")
	if err != nil {
		return 0, err
	}

	c.logger.Info().
		Int("total_count", page.TotalCount).
		Msg("Probed catalog size")

	return page.TotalCount, nil
}
