package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	BotFile     string `yaml:"bot_file" envconfig:"LOG_FILE"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// ExchangeConfig points the bot at a Binance compatible spot API.
// Missing credentials only disable order placement; market data is public.
type ExchangeConfig struct {
	APIKey         string `yaml:"api_key" envconfig:"BINANCE_API_KEY"`
	APISecret      string `yaml:"api_secret" envconfig:"BINANCE_API_SECRET"`
	BaseURL        string `yaml:"base_url" envconfig:"BINANCE_BASE_URL"`
	QuoteAsset     string `yaml:"quote_asset" envconfig:"QUOTE_ASSET"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"EXCHANGE_TIMEOUT_SECONDS"`
}

// CacheConfig enables the shared Redis cache for the tradable pair list.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" envconfig:"REDIS_DB"`
	PairsTTL      time.Duration `yaml:"pairs_ttl" envconfig:"PAIRS_CACHE_TTL"`
}

// SessionConfig controls conversation session lifetime.
type SessionConfig struct {
	// TTL expires idle sessions; 0 keeps them until the flow completes.
	TTL time.Duration `yaml:"ttl" envconfig:"SESSION_TTL"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

const (
	// DefaultBaseURL is the Binance spot testnet, matching the bot's sandbox default.
	DefaultBaseURL = "https://testnet.binance.vision"
	// DefaultQuoteAsset limits /stats to pairs quoted in this asset.
	DefaultQuoteAsset = "USDT"

	defaultExchangeTimeoutSeconds = 10
	defaultPairsTTL               = 5 * time.Minute
)

// RateLimitConfig holds settings for inbound rate limiting.
// ExcludeUpdates accepts "callback" and "message".
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the whole bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Exchange  ExchangeConfig  `yaml:"exchange"`
	Cache     CacheConfig     `yaml:"cache"`
	Session   SessionConfig   `yaml:"session"`
}

// Load reads the optional YAML file at path, then .env, then the process
// environment. Later sources override earlier ones.
func Load(path string) (*Config, error) {
	var cfg Config

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" || rm == "polling" {
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if key != UpdateCallback && key != UpdateMessage {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}

	return normalizeExchange(cfg)
}

func normalizeExchange(cfg *Config) error {
	ex := &cfg.Exchange
	ex.APIKey = strings.TrimSpace(ex.APIKey)
	ex.APISecret = strings.TrimSpace(ex.APISecret)
	ex.BaseURL = strings.TrimRight(strings.TrimSpace(ex.BaseURL), "/")
	if ex.BaseURL == "" {
		ex.BaseURL = DefaultBaseURL
	}
	ex.QuoteAsset = strings.ToUpper(strings.TrimSpace(ex.QuoteAsset))
	if ex.QuoteAsset == "" {
		ex.QuoteAsset = DefaultQuoteAsset
	}
	if ex.TimeoutSeconds < 0 {
		return fmt.Errorf("exchange.timeout_seconds must be >= 0")
	}
	if ex.TimeoutSeconds == 0 {
		ex.TimeoutSeconds = defaultExchangeTimeoutSeconds
	}

	if cfg.Cache.PairsTTL < 0 {
		return fmt.Errorf("cache.pairs_ttl must be >= 0")
	}
	if cfg.Cache.PairsTTL == 0 {
		cfg.Cache.PairsTTL = defaultPairsTTL
	}
	if cfg.Session.TTL < 0 {
		return fmt.Errorf("session.ttl must be >= 0")
	}
	return nil
}

// HasCredentials reports whether signed (order) endpoints can be used.
func (c ExchangeConfig) HasCredentials() bool {
	return c.APIKey != "" && c.APISecret != ""
}
