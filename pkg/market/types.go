// Package market binds the public (unofficial) Steam Community Market
// endpoints: the search/render listing feed, the price overview lookup and
// the listing-page price history. These are the endpoints the market web UI
// itself uses; there is no formal contract, so decoding stays defensive.
package market

// Listing is one catalog item from the search/render feed.
type Listing struct {
	Name             string           `json:"name"`
	HashName         string           `json:"hash_name"`
	SellListings     int              `json:"sell_listings"`
	SellPrice        int              `json:"sell_price"`
	SellPriceText    string           `json:"sell_price_text"`
	AssetDescription AssetDescription `json:"asset_description"`
}

// AssetDescription carries the per-asset metadata nested in a listing.
type AssetDescription struct {
	AppID          int    `json:"appid"`
	ClassID        string `json:"classid"`
	InstanceID     string `json:"instanceid"`
	Tradable       int    `json:"tradable"`
	Type           string `json:"type"`
	MarketHashName string `json:"market_hash_name"`
	IconURL        string `json:"icon_url"`
}

// Page is one decoded search/render response.
type Page struct {
	Start      int
	TotalCount int
	Listings   []Listing
}

// PriceOverview is the current price snapshot for one item. LowestPrice,
// MedianPrice and Volume are formatted strings as the endpoint returns them
// ("$12.34", "1,532").
type PriceOverview struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price"`
	MedianPrice string `json:"median_price"`
	Volume      string `json:"volume"`
}

// searchResponse is the raw search/render payload. The pagesize field is
// omitted: the endpoint switches between string and number encodings for it
// across revisions, and the crawler never needs it.
type searchResponse struct {
	Success    bool      `json:"success"`
	Start      int       `json:"start"`
	TotalCount int       `json:"total_count"`
	Results    []Listing `json:"results"`
}
