package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const listingPageHTML = `<!DOCTYPE html>
<html>
<head><title>Steam Community Market</title></head>
<body>
<script type="text/javascript">
	var line1=[["Dec 21 2023 01: +0",12.345,"24"],["Dec 22 2023 01: +0",13.1,"18"],["Dec 23 2023 01: +0",12.9,"31"]];
	g_timePriceHistoryEarliest = new Date();
</script>
</body>
</html>`

func TestClient_PriceHistory(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(listingPageHTML))
	}))
	defer srv.Close()

	c := newTestMarket(t, srv.URL, Options{})

	points, err := c.PriceHistory(context.Background(), "AK-47 | Redline (Field-Tested)")
	if err != nil {
		t.Fatalf("PriceHistory() error = %v", err)
	}

	if gotPath != "/market/listings/730/AK-47 | Redline (Field-Tested)" {
		t.Errorf("request path = %q", gotPath)
	}

	if len(points) != 3 {
		t.Fatalf("points = %d, want 3", len(points))
	}

	first := points[0]
	wantTime := time.Date(2023, time.December, 21, 1, 0, 0, 0, time.UTC)
	if !first.Time.Equal(wantTime) {
		t.Errorf("first point time = %v, want %v", first.Time, wantTime)
	}
	if first.Price != 12.345 {
		t.Errorf("first point price = %v, want 12.345", first.Price)
	}
	if first.Volume != 24 {
		t.Errorf("first point volume = %d, want 24", first.Volume)
	}
}

func TestClient_PriceHistorySkipsMalformedPoints(t *testing.T) {
	// Bad timestamp, non-numeric volume, short entry; one valid point.
	body := `<html><script>
	var line1=[["not a date",1.0,"5"],["Dec 21 2023 01: +0",2.0,"oops"],["Dec 21 2023 02: +0",3.0],["Dec 21 2023 03: +0",4.0,"7"]];
	</script></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := newTestMarket(t, srv.URL, Options{})

	points, err := c.PriceHistory(context.Background(), "item")
	if err != nil {
		t.Fatalf("PriceHistory() error = %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("points = %d, want the single well-formed point", len(points))
	}
	if points[0].Volume != 7 {
		t.Errorf("volume = %d, want 7", points[0].Volume)
	}
}

func TestClient_PriceHistoryMissingSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>There are no listings for this item.</body></html>`))
	}))
	defer srv.Close()

	c := newTestMarket(t, srv.URL, Options{})

	_, err := c.PriceHistory(context.Background(), "Ghost Item")
	if err == nil {
		t.Fatal("PriceHistory() error = nil, want missing series failure")
	}
	if !strings.Contains(err.Error(), "no price history") {
		t.Errorf("error = %v, want missing series mention", err)
	}
}

func TestClient_PriceHistoryEmptyHashName(t *testing.T) {
	c := newTestMarket(t, "http://example.invalid", Options{})

	if _, err := c.PriceHistory(context.Background(), ""); err == nil {
		t.Error("PriceHistory(\"\") error = nil, want validation failure")
	}
}
