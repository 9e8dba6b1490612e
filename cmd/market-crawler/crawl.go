package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/steamscan/market-crawler/internal/ingest"
	"github.com/steamscan/market-crawler/internal/storage"
	"github.com/steamscan/market-crawler/pkg/crawl"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Enumerate the market catalog and store new items",
		Long: `Crawl walks the paginated listing feed from the configured start offset
and stores newly discovered items in the SQLite database. The session stays
inside the configured request window; transient failures are retried with
exponential backoff, and an aborted session still ingests everything it
gathered.

Examples:
  # Full catalog run with defaults (CS2, 1 request per 20s)
  market-crawler crawl

  # Resume from an offset, with metrics exposed
  market-crawler crawl --start-offset 4200 --metrics-addr :9100

  # Narrow the feed to a search term
  market-crawler crawl --query "AK-47"`,
		RunE: runCrawlCmd,
	}

	cmd.Flags().Int("start-offset", 0, "Listing feed offset to start from")
	cmd.Flags().String("query", "", "Optional search term to narrow the feed")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	startMetrics(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	searchClient, err := newMarketClient(ctx, cfg)
	if err != nil {
		return err
	}

	crawler, err := crawl.NewController(searchClient, cfg.Market.PageSize)
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.Path, storage.DefaultOptions())
	if err != nil {
		return err
	}
	defer store.Close()

	startOffset, _ := cmd.Flags().GetInt("start-offset")
	query, _ := cmd.Flags().GetString("query")

	summary, err := ingest.New(crawler, store).Run(ctx, startOffset, query)
	if err != nil {
		return err
	}

	log.Info().
		Int("fetched", summary.Fetched).
		Int("new", summary.New).
		Int("pages", summary.Pages).
		Str("status", string(summary.Status)).
		Msg("Crawl run finished")

	return nil
}
