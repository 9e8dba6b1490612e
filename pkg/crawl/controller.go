// Package crawl drives the paginated enumeration of the market catalog.
// One controller runs one crawl session sequentially: pages are fetched in
// offset order through the resilient executor, and a failed page ends the
// session with whatever was gathered rather than hammering a service that
// is already degraded.
package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/steamscan/market-crawler/pkg/market"
)

// Status is the terminal state of a crawl session.
type Status string

const (
	// StatusComplete means the catalog was exhausted.
	StatusComplete Status = "complete"

	// StatusAborted means the session ended early; the result still carries
	// everything gathered before the failure. Callers must treat this as
	// best-effort, incomplete data, not a hard failure.
	StatusAborted Status = "aborted"
)

// Cursor tracks progress through the paginated listing feed. Offset only
// ever advances; an offset consumed once in a session is never re-requested.
type Cursor struct {
	Offset     int
	PageSize   int
	TotalKnown int
}

// Result is the outcome of one crawl session.
type Result struct {
	Listings []market.Listing
	Status   Status
	Pages    int

	// Err is the cause of an aborted session, nil when complete.
	Err error
}

// Controller walks the listing feed page by page.
type Controller struct {
	search   *market.Client
	pageSize int
	logger   zerolog.Logger
}

// DefaultPageSize is the maximum the search/render endpoint serves per call.
const DefaultPageSize = 100

// NewController creates a crawl controller.
func NewController(search *market.Client, pageSize int) (*Controller, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive (got %d)", pageSize)
	}
	if pageSize > DefaultPageSize {
		return nil, fmt.Errorf("page size must not exceed %d (got %d)", DefaultPageSize, pageSize)
	}
	return &Controller{
		search:   search,
		pageSize: pageSize,
		logger:   log.With().Str("component", "crawl").Logger(),
	}, nil
}

// Run crawls the catalog from startOffset until exhaustion or failure.
// The probe learns the advisory total count; an empty page is always the
// authoritative termination signal. Run never returns an error: a probe or
// page failure yields an aborted result carrying the partial accumulation
// and the cause.
func (c *Controller) Run(ctx context.Context, startOffset int, query string) *Result {
	start := time.Now()

	total, err := c.search.TotalCount(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Total count probe failed, aborting crawl")
		crawlsTotal.WithLabelValues(string(StatusAborted)).Inc()
		return &Result{
			Status: StatusAborted,
			Err:    fmt.Errorf("probe total count: %w", err),
		}
	}

	cursor := Cursor{Offset: startOffset, PageSize: c.pageSize, TotalKnown: total}
	c.logger.Info().
		Int("total_known", total).
		Int("start_offset", startOffset).
		Int("page_size", c.pageSize).
		Msg("Starting paged crawl")

	var listings []market.Listing
	pages := 0

	for cursor.Offset < cursor.TotalKnown {
		page, err := c.search.FetchPage(ctx, cursor.Offset, cursor.PageSize, query)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Int("offset", cursor.Offset).
				Int("gathered", len(listings)).
				Msg("Page fetch failed, returning partial results")
			crawlsTotal.WithLabelValues(string(StatusAborted)).Inc()
			return &Result{
				Listings: listings,
				Status:   StatusAborted,
				Pages:    pages,
				Err:      fmt.Errorf("fetch page at offset %d: %w", cursor.Offset, err),
			}
		}

		pages++
		pagesTotal.Inc()

		if len(page.Listings) == 0 {
			// The feed ran dry before the advisory total; trust the feed.
			c.logger.Info().
				Int("offset", cursor.Offset).
				Int("total_known", cursor.TotalKnown).
				Msg("Empty page before advisory total, catalog exhausted")
			break
		}

		listings = append(listings, page.Listings...)
		itemsTotal.Add(float64(len(page.Listings)))
		cursor.Offset += cursor.PageSize

		if pages%10 == 0 {
			c.logger.Info().
				Int("pages", pages).
				Int("gathered", len(listings)).
				Int("total_known", cursor.TotalKnown).
				Msg("Crawl progress")
		}
	}

	c.logger.Info().
		Int("pages", pages).
		Int("gathered", len(listings)).
		Dur("duration", time.Since(start)).
		Msg("Crawl complete")

	crawlsTotal.WithLabelValues(string(StatusComplete)).Inc()
	return &Result{
		Listings: listings,
		Status:   StatusComplete,
		Pages:    pages,
	}
}
