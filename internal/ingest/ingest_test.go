package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/steamscan/market-crawler/internal/storage"
	"github.com/steamscan/market-crawler/internal/testutil"
	"github.com/steamscan/market-crawler/pkg/client"
	"github.com/steamscan/market-crawler/pkg/crawl"
	"github.com/steamscan/market-crawler/pkg/market"
	"github.com/steamscan/market-crawler/pkg/ratelimit"
)

func newTestPipeline(t *testing.T, mock *testutil.MockMarket) (*Pipeline, *storage.Store) {
	t.Helper()

	exec, err := client.New(client.Config{
		BaseURL: mock.URL(),
		Policy: ratelimit.Policy{
			MaxRequests:    100,
			Window:         time.Minute,
			MaxRetries:     1,
			BackoffBase:    time.Millisecond,
			JitterFraction: 0,
		},
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}

	search := market.NewClient(exec, market.Options{})
	crawler, err := crawl.NewController(search, 100)
	if err != nil {
		t.Fatalf("crawl.NewController() error = %v", err)
	}

	store, err := storage.Open(filepath.Join(t.TempDir(), "market.db"), storage.DefaultOptions())
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return New(crawler, store), store
}

func TestPipeline_Run(t *testing.T) {
	mock := testutil.NewMockMarket()
	defer mock.Close()
	mock.SeedItems(150)

	p, store := newTestPipeline(t, mock)

	summary, err := p.Run(context.Background(), 0, "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Status != crawl.StatusComplete {
		t.Errorf("status = %q, want %q", summary.Status, crawl.StatusComplete)
	}
	if summary.Fetched != 150 {
		t.Errorf("fetched = %d, want 150", summary.Fetched)
	}
	if summary.New != 150 {
		t.Errorf("new = %d, want 150", summary.New)
	}

	n, err := store.CountItems(context.Background())
	if err != nil {
		t.Fatalf("CountItems() error = %v", err)
	}
	if n != 150 {
		t.Errorf("stored items = %d, want 150", n)
	}
}

func TestPipeline_RunSkipsKnownItems(t *testing.T) {
	mock := testutil.NewMockMarket()
	defer mock.Close()
	mock.SeedItems(150)

	p, _ := newTestPipeline(t, mock)
	ctx := context.Background()

	if _, err := p.Run(ctx, 0, ""); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	summary, err := p.Run(ctx, 0, "")
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if summary.Fetched != 150 {
		t.Errorf("fetched = %d, want 150", summary.Fetched)
	}
	if summary.New != 0 {
		t.Errorf("new = %d, want 0 on re-crawl", summary.New)
	}
}

func TestPipeline_RunIngestsPartialCrawl(t *testing.T) {
	mock := testutil.NewMockMarket()
	defer mock.Close()
	mock.SeedItems(250)
	// Probe and first page succeed, second page fails terminally.
	mock.ScriptStatuses(0, 0, 404)

	p, store := newTestPipeline(t, mock)

	summary, err := p.Run(context.Background(), 0, "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Status != crawl.StatusAborted {
		t.Errorf("status = %q, want %q", summary.Status, crawl.StatusAborted)
	}
	if summary.CrawlErr == nil {
		t.Error("crawl err = nil, want abort cause")
	}
	if summary.Fetched != 100 {
		t.Errorf("fetched = %d, want 100 partial", summary.Fetched)
	}
	if summary.New != 100 {
		t.Errorf("new = %d, want 100", summary.New)
	}

	n, err := store.CountItems(context.Background())
	if err != nil {
		t.Fatalf("CountItems() error = %v", err)
	}
	if n != 100 {
		t.Errorf("stored items = %d, want the partial 100", n)
	}
}
