// Package testutil provides testing utilities for the market crawler.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// MockItem is one catalog entry served by the mock market.
type MockItem struct {
	HashName      string
	Type          string
	ClassID       string
	InstanceID    string
	SellPriceText string
	Tradable      int
}

// MockMarket is a configurable mock of the Steam Community Market endpoints
// for testing: a paged search/render feed, price overviews, and scripted
// failure sequences.
type MockMarket struct {
	server *httptest.Server

	mu             sync.RWMutex
	items          []MockItem
	totalOverride  int   // reported total_count when non-zero
	scripted       []int // pending status codes for search requests; 0 serves normally
	priceOverviews map[string]string

	// Tracking
	RequestCount      int
	SearchRequests    int
	PriceRequests     int
	LastRequestHeader http.Header
}

// NewMockMarket creates a mock market server with an empty catalog.
func NewMockMarket() *MockMarket {
	mock := &MockMarket{
		priceOverviews: make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/market/search/render/", mock.handleSearch)
	mux.HandleFunc("/market/priceoverview/", mock.handlePriceOverview)
	mock.server = httptest.NewServer(mock.track(mux))

	return mock
}

// URL returns the mock server URL.
func (m *MockMarket) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockMarket) Close() {
	m.server.Close()
}

// Reset clears tracking counters and scripted failures.
func (m *MockMarket) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.SearchRequests = 0
	m.PriceRequests = 0
	m.scripted = nil
}

// SeedItems fills the catalog with n generated items.
func (m *MockMarket) SeedItems(n int) {
	items := make([]MockItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, MockItem{
			HashName:      fmt.Sprintf("Test Skin %04d (Field-Tested)", i),
			Type:          "Classified Rifle",
			ClassID:       fmt.Sprintf("31000%04d", i),
			InstanceID:    "188530139",
			SellPriceText: "$1.23",
			Tradable:      1,
		})
	}
	m.SetItems(items)
}

// SetItems replaces the catalog.
func (m *MockMarket) SetItems(items []MockItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
}

// SetTotalCount overrides the reported total_count. The live feed's
// advisory total regularly disagrees with what the pages actually serve;
// this reproduces that.
func (m *MockMarket) SetTotalCount(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalOverride = total
}

// ScriptStatuses queues status codes consumed by successive search
// requests; 0 serves the page normally.
func (m *MockMarket) ScriptStatuses(codes ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted = append(m.scripted, codes...)
}

// SetPriceOverview registers a raw price overview body for a hash name.
func (m *MockMarket) SetPriceOverview(hashName, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.priceOverviews[hashName] = body
}

// track wraps the mux with request accounting.
func (m *MockMarket) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.RequestCount++
		m.LastRequestHeader = r.Header.Clone()
		m.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (m *MockMarket) handleSearch(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.SearchRequests++
	var code int
	if len(m.scripted) > 0 {
		code = m.scripted[0]
		m.scripted = m.scripted[1:]
	}
	items := m.items
	total := m.totalOverride
	m.mu.Unlock()

	if total == 0 {
		total = len(items)
	}

	if code != 0 {
		w.WriteHeader(code)
		return
	}

	start, _ := strconv.Atoi(r.URL.Query().Get("start"))
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	if count <= 0 {
		count = 10
	}

	end := start + count
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	results := make([]map[string]any, 0, end-start)
	for _, item := range items[start:end] {
		results = append(results, map[string]any{
			"name":            item.HashName,
			"hash_name":       item.HashName,
			"sell_listings":   42,
			"sell_price":      123,
			"sell_price_text": item.SellPriceText,
			"asset_description": map[string]any{
				"appid":            730,
				"classid":          item.ClassID,
				"instanceid":       item.InstanceID,
				"tradable":         item.Tradable,
				"type":             item.Type,
				"market_hash_name": item.HashName,
				"icon_url":         "fWFc82js0fmoRAP-qOIPu5THSWqfSmTELLqcUywGkijVjZULUrsm1j-9xgE",
			},
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":     true,
		"start":       start,
		"total_count": total,
		"results":     results,
	})
}

func (m *MockMarket) handlePriceOverview(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.PriceRequests++
	body, ok := m.priceOverviews[r.URL.Query().Get("market_hash_name")]
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.Write([]byte(`{"success":false}`))
		return
	}
	w.Write([]byte(body))
}
