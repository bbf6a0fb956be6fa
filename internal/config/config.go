package config

import (
	"time"

	"golang-dex-token-analyzer/internal/analysis"
	"golang-dex-token-analyzer/pkg/config"
)

// DexScreener holds the upstream market-data API settings.
type DexScreener struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	DefaultChain   string        `mapstructure:"default_chain"`
	SearchCacheTTL time.Duration `mapstructure:"search_cache_ttl"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// Batch holds the batch orchestrator limits.
type Batch struct {
	MaxPairs int `mapstructure:"max_pairs"`
}

// Worker holds the stream consumer and scheduler settings.
type Worker struct {
	UpdateCron   string        `mapstructure:"update_cron"`
	BlockTimeout time.Duration `mapstructure:"block_timeout"`
	TaskTimeout  time.Duration `mapstructure:"task_timeout"`

	// Messages left pending longer than MaxIdle are reclaimed every RetryInterval.
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	MaxIdle       time.Duration `mapstructure:"max_idle"`
}

// Config holds the full configuration shared by every binary.
type Config struct {
	App         config.App          `mapstructure:"app"`
	Logger      config.Logger       `mapstructure:"logger"`
	Database    config.Database     `mapstructure:"database"`
	Redis       config.Redis        `mapstructure:"redis"`
	API         config.API          `mapstructure:"api"`
	Telegram    config.Telegram     `mapstructure:"telegram"`
	DexScreener DexScreener         `mapstructure:"dexscreener"`
	Batch       Batch               `mapstructure:"batch"`
	Worker      Worker              `mapstructure:"worker"`
	Analysis    analysis.Thresholds `mapstructure:"analysis"`
}

// Defaults returns the values used when neither the file nor the environment sets a key.
func Defaults() map[string]interface{} {
	th := analysis.DefaultThresholds()
	return map[string]interface{}{
		"app.name":                      "dex-token-analyzer",
		"app.env":                       "development",
		"logger.level":                  "info",
		"logger.encoding":               "json",
		"database.host":                 "localhost",
		"database.port":                 5432,
		"database.user":                 "postgres",
		"database.password":             "",
		"database.name":                 "dex_tokens",
		"database.ssl_mode":             "disable",
		"database.time_zone":            "UTC",
		"database.max_idle_conns":       5,
		"database.max_open_conns":       20,
		"database.conn_max_lifetime":    "1h",
		"database.log_level":            "silent",
		"redis.host":                    "localhost",
		"redis.port":                    6379,
		"redis.password":                "",
		"redis.db":                      0,
		"redis.pool_size":               10,
		"redis.stream_max_len":          1000,
		"api.host":                      "0.0.0.0",
		"api.port":                      8080,
		"telegram.enabled":              false,
		"telegram.bot_token":            "",
		"telegram.chat_id":              0,
		"dexscreener.base_url":          "https://api.dexscreener.com/latest/dex",
		"dexscreener.timeout":           "10s",
		"dexscreener.default_chain":     "BSC",
		"dexscreener.search_cache_ttl":  "30s",
		"dexscreener.user_agent":        "dex-token-analyzer/1.0",
		"batch.max_pairs":               50,
		"worker.update_cron":            "*/15 * * * *",
		"worker.block_timeout":          "2s",
		"worker.task_timeout":           "2m",
		"worker.retry_interval":         "1m",
		"worker.max_idle":               "5m",
		"analysis.volume_high":          th.VolumeHigh,
		"analysis.volume_mid":           th.VolumeMid,
		"analysis.volume_low":           th.VolumeLow,
		"analysis.price_change_max":     th.PriceChangeMax,
		"analysis.price_change_dip":     th.PriceChangeDip,
		"analysis.liquidity_high":       th.LiquidityHigh,
		"analysis.liquidity_mid":        th.LiquidityMid,
		"analysis.liquidity_low":        th.LiquidityLow,
		"analysis.market_cap_sweet_min": th.MarketCapSweetMin,
		"analysis.market_cap_sweet_max": th.MarketCapSweetMax,
		"analysis.market_cap_low":       th.MarketCapLow,
		"analysis.buy_min_score":        th.BuyMinScore,
		"analysis.buy_min_price_change": th.BuyMinPriceChange,
		"analysis.hold_min_score":       th.HoldMinScore,
	}
}

// Load loads the configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults()); err != nil {
		return nil, err
	}
	return &cfg, nil
}
