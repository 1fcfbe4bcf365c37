package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting, loaded from the environment.
type Config struct {
	App     AppConfig
	History HistoryConfig
	Market  MarketConfig
	News    NewsConfig
	Alerts  AlertsConfig
	Server  ServerConfig
}

// AppConfig covers the watch list and the trading window.
type AppConfig struct {
	Ticker       string   `envconfig:"TICKER" default:"APP"`
	WatchTickers []string `envconfig:"WATCH_TICKERS" default:"META,GOOGL,TTD,MGNI,PUBM,DV"`

	// Collection and signal checks only run on these weekdays
	// (0=Monday .. 6=Sunday).
	TradingDays []int `envconfig:"TRADING_DAYS" default:"3,4"`

	MarketOpen     string `envconfig:"MARKET_OPEN" default:"09:30"`
	MarketClose    string `envconfig:"MARKET_CLOSE" default:"16:00"`
	PremarketStart string `envconfig:"PREMARKET_START" default:"09:00"`

	CheckInterval    time.Duration `envconfig:"CHECK_INTERVAL" default:"5m"`
	LiveNewsInterval time.Duration `envconfig:"LIVE_NEWS_INTERVAL" default:"2m"`
}

// HistoryConfig covers the options price-history store.
type HistoryConfig struct {
	DBPath             string        `envconfig:"HISTORY_DB_PATH" default:"data/options_history.db"`
	LookbackWeeks      int           `envconfig:"HISTORY_WEEKS" default:"6"`
	RetentionWeeks     int           `envconfig:"RETENTION_WEEKS" default:"6"`
	ElevationThreshold float64       `envconfig:"PRICE_ELEVATION_THRESHOLD" default:"0.34"`
	ElevationBoost     float64       `envconfig:"PRICE_ELEVATION_BOOST" default:"0.3"`
	MaxOptionPrice     float64       `envconfig:"MAX_OPTION_PRICE" default:"1.00"`
	CollectTimeout     time.Duration `envconfig:"COLLECT_TIMEOUT" default:"45s"`
}

// MarketConfig covers the market data collaborator.
type MarketConfig struct {
	AlpacaAPIKey    string `envconfig:"ALPACA_API_KEY"`
	AlpacaAPISecret string `envconfig:"ALPACA_API_SECRET"`
	AlpacaDataURL   string `envconfig:"ALPACA_DATA_URL" default:"https://data.alpaca.markets"`
}

// NewsConfig covers the news and earnings calendar collaborators.
type NewsConfig struct {
	FinnhubAPIKey string `envconfig:"FINNHUB_API_KEY"`
	NewsAPIKey    string `envconfig:"NEWSAPI_KEY"`
}

// AlertsConfig covers the chat webhook.
type AlertsConfig struct {
	DiscordWebhookURL string `envconfig:"DISCORD_WEBHOOK_URL"`
}

// ServerConfig covers the monitoring API.
type ServerConfig struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
	Enabled    bool   `envconfig:"API_ENABLED" default:"true"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
