package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/steamscan/market-crawler/pkg/cache"
)

// PriceOverview looks up the current price snapshot for one item by its
// market hash name. The call reuses the resilient executor but contains no
// retry logic of its own: a success=false body or non-200 is an error
// surfaced to the caller, never retried here.
//
// When a price cache is configured, fresh cached snapshots short-circuit the
// HTTP call and successful responses are written back.
func (c *Client) PriceOverview(ctx context.Context, hashName string) (*PriceOverview, error) {
	if hashName == "" {
		return nil, fmt.Errorf("market hash name is required")
	}

	key := cache.Key{AppID: c.appID, Currency: c.currency, HashName: hashName}

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		if err == nil {
			var po PriceOverview
			if err := json.Unmarshal(entry.Data, &po); err == nil {
				c.logger.Debug().
					Str("hash_name", hashName).
					Msg("Price overview served from cache")
				return &po, nil
			}
			// Unreadable entry: drop it and fall through to the live call.
			_ = c.cache.Delete(ctx, key)
		} else if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("hash_name", hashName).Msg("Price cache get error")
		}
	}

	q := url.Values{
		"appid":            {strconv.Itoa(c.appID)},
		"currency":         {strconv.Itoa(c.currency)},
		"market_hash_name": {hashName},
	}

	resp, err := c.exec.Get(ctx, priceOverviewPath, q)
	if err != nil {
		return nil, err
	}

	var po PriceOverview
	if err := json.Unmarshal(resp.Body, &po); err != nil {
		return nil, fmt.Errorf("decode price overview for %q: %w", hashName, err)
	}
	if !po.Success {
		return nil, fmt.Errorf("price overview for %q returned success=false", hashName)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, resp.Body); err != nil {
			c.logger.Warn().Err(err).Str("hash_name", hashName).Msg("Price cache set error")
		}
	}

	return &po, nil
}
