// Package ingest runs the crawl-to-storage pipeline: enumerate the catalog,
// drop items already stored, persist the new discoveries.
package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/steamscan/market-crawler/internal/storage"
	"github.com/steamscan/market-crawler/pkg/crawl"
	"github.com/steamscan/market-crawler/pkg/market"
)

// Summary reports one ingest run.
type Summary struct {
	// Fetched is the number of listings the crawl gathered.
	Fetched int

	// New is the number of listings actually inserted.
	New int

	// Pages is the number of listing pages fetched.
	Pages int

	// Status is the crawl's terminal status. An aborted crawl still ingests
	// whatever it gathered.
	Status crawl.Status

	// CrawlErr is the cause of an aborted crawl, nil when complete.
	CrawlErr error
}

// Pipeline wires a crawl controller to the item store.
type Pipeline struct {
	crawler *crawl.Controller
	store   *storage.Store
	logger  zerolog.Logger
}

// New creates an ingest pipeline.
func New(crawler *crawl.Controller, store *storage.Store) *Pipeline {
	return &Pipeline{
		crawler: crawler,
		store:   store,
		logger:  log.With().Str("component", "ingest").Logger(),
	}
}

// Run crawls the catalog and stores new items. Crawl aborts are not errors
// here: the partial gathering is ingested and reported through the summary.
// Only storage failures return an error.
func (p *Pipeline) Run(ctx context.Context, startOffset int, query string) (*Summary, error) {
	result := p.crawler.Run(ctx, startOffset, query)

	if result.Status == crawl.StatusAborted {
		p.logger.Warn().
			Err(result.Err).
			Int("gathered", len(result.Listings)).
			Msg("Crawl aborted, ingesting partial results")
	}

	existing, err := p.store.ExistingHashNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("load existing items: %w", err)
	}

	fresh := make([]market.Listing, 0, len(result.Listings))
	for _, l := range result.Listings {
		if _, ok := existing[l.HashName]; ok {
			continue
		}
		fresh = append(fresh, l)
	}

	inserted, err := p.store.InsertListings(ctx, fresh)
	if err != nil {
		return nil, fmt.Errorf("insert listings: %w", err)
	}

	p.logger.Info().
		Int("fetched", len(result.Listings)).
		Int("new", inserted).
		Int("pages", result.Pages).
		Str("status", string(result.Status)).
		Msg("Ingest run finished")

	return &Summary{
		Fetched:  len(result.Listings),
		New:      inserted,
		Pages:    result.Pages,
		Status:   result.Status,
		CrawlErr: result.Err,
	}, nil
}
