package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEnvOnlyAppliesDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if cfg.Exchange.BaseURL != DefaultBaseURL {
		t.Fatalf("base url = %q", cfg.Exchange.BaseURL)
	}
	if cfg.Exchange.QuoteAsset != DefaultQuoteAsset {
		t.Fatalf("quote asset = %q", cfg.Exchange.QuoteAsset)
	}
	if cfg.Cache.PairsTTL != defaultPairsTTL {
		t.Fatalf("pairs ttl = %v", cfg.Cache.PairsTTL)
	}
	if cfg.Session.TTL != 0 {
		t.Fatalf("session ttl = %v, want disabled", cfg.Session.TTL)
	}
	if cfg.Exchange.HasCredentials() {
		t.Fatal("credentials should be absent")
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, `
telegram:
  token: from-yaml
exchange:
  base_url: https://api.binance.com/
  quote_asset: btc
session:
  ttl: 30m
`)
	t.Setenv("BINANCE_API_KEY", "key")
	t.Setenv("BINANCE_API_SECRET", "secret")
	t.Setenv("QUOTE_ASSET", "eth")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-yaml" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Exchange.BaseURL != "https://api.binance.com" {
		t.Fatalf("base url = %q", cfg.Exchange.BaseURL)
	}
	if cfg.Exchange.QuoteAsset != "ETH" {
		t.Fatalf("quote asset = %q", cfg.Exchange.QuoteAsset)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Fatalf("session ttl = %v", cfg.Session.TTL)
	}
	if !cfg.Exchange.HasCredentials() {
		t.Fatal("expected credentials")
	}
}

func TestNormalizeRequiresToken(t *testing.T) {
	if err := Normalize(&Config{}); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNormalizeWebhookRequiresURL(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected webhook validation error")
	}
}

func TestNormalizeRejectsUnknownExclusion(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{Token: "t"},
		RateLimit: RateLimitConfig{ExcludeUpdates: []string{"inline_query"}},
	}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected exclusion validation error")
	}
}

func TestNormalizeRejectsNegativeSessionTTL(t *testing.T) {
	cfg := &Config{
		Telegram: TelegramConfig{Token: "t"},
		Session:  SessionConfig{TTL: -time.Second},
	}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected ttl validation error")
	}
}
