package crawl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	crawlsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "market_crawls_total",
		Help: "Total number of crawl sessions by terminal status",
	}, []string{"status"})

	pagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "market_crawl_pages_total",
		Help: "Total number of listing pages fetched across all crawls",
	})

	itemsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "market_crawl_items_total",
		Help: "Total number of listings gathered across all crawls",
	})
)
