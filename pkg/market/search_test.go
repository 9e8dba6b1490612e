package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/steamscan/market-crawler/internal/testutil"
	"github.com/steamscan/market-crawler/pkg/client"
	"github.com/steamscan/market-crawler/pkg/ratelimit"
)

// newTestMarket binds a market client to baseURL with a permissive rate
// limit so tests run at full speed.
func newTestMarket(t *testing.T, baseURL string, opts Options) *Client {
	t.Helper()

	exec, err := client.New(client.Config{
		BaseURL: baseURL,
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

	return NewClient(exec, opts)
}

func TestNewClient_Defaults(t *testing.T) {
	c := newTestMarket(t, "http://example.invalid", Options{})
	if c.AppID() != 730 {
		t.Errorf("AppID() = %d, want default 730", c.AppID())
	}
	if c.currency != 1 {
		t.Errorf("currency = %d, want default 1", c.currency)
	}
}

func TestClient_FetchPage(t *testing.T) {
	mock := testutil.NewMockMarket()
	defer mock.Close()
	mock.SeedItems(25)

	c := newTestMarket(t, mock.URL(), Options{})

	page, err := c.FetchPage(context.Background(), 10, 10, "")
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}

	if page.Start != 10 {
		t.Errorf("page start = %d, want 10", page.Start)
	}
	if page.TotalCount != 25 {
		t.Errorf("total count = %d, want 25", page.TotalCount)
	}
	if len(page.Listings) != 10 {
		t.Fatalf("listings = %d, want 10", len(page.Listings))
	}

	first := page.Listings[0]
	if first.HashName != "Test Skin 0010 (Field-Tested)" {
		t.Errorf("first hash name = %q, want item 10", first.HashName)
	}
	if first.AssetDescription.AppID != 730 {
		t.Errorf("asset appid = %d, want 730", first.AssetDescription.AppID)
	}
	if first.AssetDescription.Tradable != 1 {
		t.Errorf("asset tradable = %d, want 1", first.AssetDescription.Tradable)
	}
}

func TestClient_FetchPageQueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"start":0,"total_count":0,"results":[]}`))
	}))
	defer srv.Close()

	c := newTestMarket(t, srv.URL, Options{AppID: 440})

	if _, err := c.FetchPage(context.Background(), 50, 100, "knife"); err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}

	want := "appid=440&count=100&norender=1&query=knife&start=50"
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestClient_FetchPageSuccessFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	c := newTestMarket(t, srv.URL, Options{})

	_, err := c.FetchPage(context.Background(), 0, 100, "")
	if err == nil {
		t.Fatal("FetchPage() error = nil, want success=false failure")
	}
	if !strings.Contains(err.Error(), "success=false") {
		t.Errorf("error = %v, want success=false mention", err)
	}
}

func TestClient_FetchPageDecodeError(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	c := newTestMarket(t, srv.URL, Options{})

	_, err := c.FetchPage(context.Background(), 0, 100, "")
	if err == nil {
		t.Fatal("FetchPage() error = nil, want decode failure")
	}
	// Malformed bodies are terminal, not retried.
	if requests != 1 {
		t.Errorf("requests = %d, want 1", requests)
	}
}

func TestClient_TotalCount(t *testing.T) {
	mock := testutil.NewMockMarket()
	defer mock.Close()
	mock.SeedItems(1234)

	c := newTestMarket(t, mock.URL(), Options{})

	total, err := c.TotalCount(context.Background())
	if err != nil {
		t.Fatalf("TotalCount() error = %v", err)
	}
	if total != 1234 {
		t.Errorf("total = %d, want 1234", total)
	}
	if mock.SearchRequests != 1 {
		t.Errorf("search requests = %d, want a single count=1 probe", mock.SearchRequests)
	}
}
