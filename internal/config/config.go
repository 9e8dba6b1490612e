// Package config loads the crawler configuration from defaults, an optional
// YAML file and MARKET_-prefixed environment variables, in that order of
// precedence (lowest to highest).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full crawler configuration.
type Config struct {
	// Market selects what to crawl.
	Market MarketConfig `mapstructure:"market"`

	// RateLimit drives the request ledger, gate and backoff.
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Storage locates the items database.
	Storage StorageConfig `mapstructure:"storage"`

	// Cache configures the optional Redis price cache.
	Cache CacheConfig `mapstructure:"cache"`

	// Logging configures log output.
	Logging LoggingConfig `mapstructure:"logging"`
}

// MarketConfig selects the catalog and transport parameters.
type MarketConfig struct {
	AppID      int           `mapstructure:"app_id"`
	Currency   int           `mapstructure:"currency"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	PageSize   int           `mapstructure:"page_size"`
	UserAgents []string      `mapstructure:"user_agents"`
}

// RateLimitConfig mirrors the rate limit policy.
type RateLimitConfig struct {
	MaxRequests    int           `mapstructure:"max_requests"`
	Window         time.Duration `mapstructure:"window"`
	MaxRetries     int           `mapstructure:"max_retries"`
	BackoffBase    time.Duration `mapstructure:"backoff_base"`
	JitterFraction float64       `mapstructure:"jitter_fraction"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig configures the Redis price cache. An empty address disables
// caching.
type CacheConfig struct {
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads the configuration. configFile may be empty, in which case only
// defaults and environment variables apply.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("MARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("market.app_id", 730)
	v.SetDefault("market.currency", 1)
	v.SetDefault("market.base_url", "https://steamcommunity.com")
	v.SetDefault("market.timeout", 30*time.Second)
	v.SetDefault("market.page_size", 100)
	v.SetDefault("market.user_agents", []string{})

	v.SetDefault("rate_limit.max_requests", 1)
	v.SetDefault("rate_limit.window", 20*time.Second)
	v.SetDefault("rate_limit.max_retries", 3)
	v.SetDefault("rate_limit.backoff_base", 30*time.Second)
	v.SetDefault("rate_limit.jitter_fraction", 0.3)

	v.SetDefault("storage.path", "market.db")

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)
}

// Validate rejects configurations the crawler cannot safely run with.
func (c *Config) Validate() error {
	if c.Market.AppID <= 0 {
		return fmt.Errorf("market.app_id must be positive (got %d)", c.Market.AppID)
	}
	if c.Market.Currency <= 0 {
		return fmt.Errorf("market.currency must be positive (got %d)", c.Market.Currency)
	}
	if c.Market.BaseURL == "" {
		return fmt.Errorf("market.base_url is required")
	}
	if c.Market.PageSize <= 0 || c.Market.PageSize > 100 {
		return fmt.Errorf("market.page_size must be in 1..100 (got %d)", c.Market.PageSize)
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.max_requests must be positive (got %d)", c.RateLimit.MaxRequests)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive (got %v)", c.RateLimit.Window)
	}
	if c.RateLimit.MaxRetries < 0 {
		return fmt.Errorf("rate_limit.max_retries must be non-negative (got %d)", c.RateLimit.MaxRetries)
	}
	if c.RateLimit.BackoffBase <= 0 {
		return fmt.Errorf("rate_limit.backoff_base must be positive (got %v)", c.RateLimit.BackoffBase)
	}
	if c.RateLimit.JitterFraction < 0 || c.RateLimit.JitterFraction >= 1 {
		return fmt.Errorf("rate_limit.jitter_fraction must be in [0, 1) (got %v)", c.RateLimit.JitterFraction)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	return nil
}
