package telegram

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/tradebot/core/config"
)

func TestDefaultMiddlewares(t *testing.T) {
	names := func(mws []Middleware) []string {
		out := make([]string, len(mws))
		for i, mw := range mws {
			out[i] = mw.Name
		}
		return out
	}

	base := DefaultMiddlewares(&coreconfig.Config{}, nil)
	if got := names(base); len(got) != 2 || got[0] != "recover" || got[1] != "logger" {
		t.Fatalf("middlewares without rate limit = %v", got)
	}

	cfg := &coreconfig.Config{RateLimit: coreconfig.RateLimitConfig{IntervalMS: 500, ExcludeUpdates: []string{"callback"}}}
	limited := DefaultMiddlewares(cfg, nil)
	if got := names(limited); len(got) != 3 || got[2] != "rate_limit" {
		t.Fatalf("middlewares with rate limit = %v", got)
	}
}

func TestBuildPoller(t *testing.T) {
	cfg := &coreconfig.Config{Telegram: coreconfig.TelegramConfig{RunMode: coreconfig.RunModeLongpoll, LongPollTimeoutSeconds: 25}}
	lp, ok := BuildPoller(cfg).(*tele.LongPoller)
	if !ok {
		t.Fatalf("longpoll mode built %T", BuildPoller(cfg))
	}
	if lp.Timeout != 25*time.Second {
		t.Fatalf("poll timeout = %v", lp.Timeout)
	}

	cfg.Telegram.RunMode = coreconfig.RunModeWebhook
	cfg.Webhook = coreconfig.WebhookConfig{URL: "https://bot.example.com/hook", Listen: "0.0.0.0", Port: 8443}
	wh, ok := BuildPoller(cfg).(*tele.Webhook)
	if !ok {
		t.Fatalf("webhook mode built %T", BuildPoller(cfg))
	}
	if wh.Listen != "0.0.0.0:8443" || wh.Endpoint.PublicURL != "https://bot.example.com/hook" {
		t.Fatalf("webhook = %+v", wh)
	}
}
