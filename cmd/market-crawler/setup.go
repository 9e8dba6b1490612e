package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/steamscan/market-crawler/internal/config"
	"github.com/steamscan/market-crawler/pkg/cache"
	"github.com/steamscan/market-crawler/pkg/client"
	"github.com/steamscan/market-crawler/pkg/logging"
	"github.com/steamscan/market-crawler/pkg/market"
	"github.com/steamscan/market-crawler/pkg/ratelimit"
)

// loadConfig reads the configuration honoring the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	pretty, _ := cmd.Flags().GetBool("pretty")
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LogLevel(cfg.Logging.Level)
	logCfg.Pretty = pretty || cfg.Logging.Pretty
	logging.Setup(logCfg)

	return cfg, nil
}

// startMetrics serves the Prometheus endpoint when --metrics-addr is set.
func startMetrics(cmd *cobra.Command) {
	addr, _ := cmd.Flags().GetString("metrics-addr")
	if addr == "" {
		return
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		log.Info().Str("addr", addr).Msg("Serving Prometheus metrics")
		server := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		if err := server.ListenAndServe(); err != nil {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
}

// newMarketClient wires the executor, optional price cache and market
// endpoints from the configuration.
func newMarketClient(ctx context.Context, cfg *config.Config) (*market.Client, error) {
	exec, err := client.New(client.Config{
		BaseURL: cfg.Market.BaseURL,
		Policy: ratelimit.Policy{
			MaxRequests:    cfg.RateLimit.MaxRequests,
			Window:         cfg.RateLimit.Window,
			MaxRetries:     cfg.RateLimit.MaxRetries,
			BackoffBase:    cfg.RateLimit.BackoffBase,
			JitterFraction: cfg.RateLimit.JitterFraction,
		},
		Timeout:    cfg.Market.Timeout,
		UserAgents: cfg.Market.UserAgents,
	})
	if err != nil {
		return nil, fmt.Errorf("create market client: %w", err)
	}

	opts := market.Options{
		AppID:    cfg.Market.AppID,
		Currency: cfg.Market.Currency,
	}

	if cfg.Cache.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to Redis at %s: %w", cfg.Cache.RedisAddr, err)
		}
		opts.PriceCache = cache.NewManager(redisClient, cfg.Cache.TTL)
		log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("Price cache enabled")
	}

	return market.NewClient(exec, opts), nil
}
