package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// priceHistoryRe extracts the inline price series embedded in a market
// listing page. The endpoint that serves the series as JSON requires a
// logged-in session; the listing HTML carries the same data publicly.
var priceHistoryRe = regexp.MustCompile(`(?s)var line1=(\[.*?\]);`)

// priceHistoryTimeLayout matches the series timestamps after the trailing
// ": +0" hour marker is stripped, e.g. "Dec 21 2023 01".
const priceHistoryTimeLayout = "Jan 02 2006 15"

// PricePoint is one aggregated point of an item's price history.
type PricePoint struct {
	Time   time.Time
	Price  float64
	Volume int
}

// PriceHistory scrapes the median-price series from an item's listing page.
// One-shot call on the executor; a missing series in the HTML is terminal.
func (c *Client) PriceHistory(ctx context.Context, hashName string) ([]PricePoint, error) {
	if hashName == "" {
		return nil, fmt.Errorf("market hash name is required")
	}

	path := fmt.Sprintf("/market/listings/%d/%s", c.appID, url.PathEscape(hashName))
	resp, err := c.exec.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	m := priceHistoryRe.FindSubmatch(resp.Body)
	if m == nil {
		return nil, fmt.Errorf("no price history found in listing page for %q", hashName)
	}

	// Each raw point is [timestamp string, price, volume string].
	var raw [][]any
	if err := json.Unmarshal(m[1], &raw); err != nil {
		return nil, fmt.Errorf("decode price history for %q: %w", hashName, err)
	}

	points := make([]PricePoint, 0, len(raw))
	for _, entry := range raw {
		if len(entry) != 3 {
			continue
		}
		ts, ok1 := entry[0].(string)
		price, ok2 := entry[1].(float64)
		volume, ok3 := entry[2].(string)
		if !ok1 || !ok2 || !ok3 {
			continue
		}

		t, err := time.Parse(priceHistoryTimeLayout, strings.TrimSuffix(ts, ": +0"))
		if err != nil {
			continue
		}
		vol, err := strconv.Atoi(volume)
		if err != nil {
			continue
		}

		points = append(points, PricePoint{Time: t.UTC(), Price: price, Volume: vol})
	}

	c.logger.Debug().
		Str("hash_name", hashName).
		Int("points", len(points)).
		Msg("Scraped price history")

	return points, nil
}
