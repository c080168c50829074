// Package bot assembles the Telegram bot: exchange adapter, chart renderer,
// conversation orchestrator and the telebot transport around them.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/tradebot/core/bootstrap"
	coreconfig "github.com/m3rciful/tradebot/core/config"
	"github.com/m3rciful/tradebot/core/logger"
	tg "github.com/m3rciful/tradebot/core/telegram"
	"github.com/m3rciful/tradebot/core/telegram/sender"
	"github.com/m3rciful/tradebot/core/telegram/state"
	"github.com/m3rciful/tradebot/internal/chart"
	"github.com/m3rciful/tradebot/internal/conversation"
	"github.com/m3rciful/tradebot/internal/exchange"
)

const (
	pairsCachePrefix = "tradebot:"
	drainTimeout     = 15 * time.Second
)

// App is the running bot.
type App struct {
	cfg      *coreconfig.Config
	infra    *bootstrap.Result
	bot      *tele.Bot
	sender   *sender.Sender
	orch     *conversation.Orchestrator
	registry *tg.Registry
	routes   []tg.Route
}

// New wires the bot from cfg and the infrastructure bootstrap opened.
func New(cfg *coreconfig.Config, infra *bootstrap.Result) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bot: nil config provided")
	}
	tb, err := tg.NewBot(cfg)
	if err != nil {
		return nil, err
	}

	var ex exchange.Exchange = exchange.NewBinance(cfg.Exchange)
	if infra != nil && infra.Redis != nil {
		cache := exchange.NewRedisCache(infra.Redis, pairsCachePrefix)
		ex = exchange.WithPairCache(ex, cache, cfg.Exchange.BaseURL, cfg.Cache.PairsTTL)
	}
	if !cfg.Exchange.HasCredentials() {
		logger.Warn(logger.Background(), "app", "trading.disabled",
			slog.String("cause", "exchange api key or secret missing"),
		)
	}

	snd := sender.New(sender.Options{MaxRetries: 2})
	orch, err := conversation.New(conversation.Options{
		Exchange:   ex,
		Renderer:   chart.New(cfg.Exchange.QuoteAsset),
		Transport:  NewTransport(tb, snd),
		Store:      state.NewMemoryStore(),
		QuoteAsset: cfg.Exchange.QuoteAsset,
		// Pairs or candles plus the render must fit in one event.
		EventTimeout: 3 * time.Duration(cfg.Exchange.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}

	h := dispatchHandler(orch)
	reg := newRegistry(h)
	return &App{
		cfg:      cfg,
		infra:    infra,
		bot:      tb,
		sender:   snd,
		orch:     orch,
		registry: reg,
		routes:   routes(reg, h),
	}, nil
}

// Run serves updates until ctx is done, then drains the conversations.
func (a *App) Run(ctx context.Context) error {
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go state.RunJanitor(janitorCtx, a.orch.Store(), a.cfg.Session.TTL)

	return tg.Run(ctx, a.bot, tg.RunOptions{
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(a.cfg, onLimited),
		Routes:      a.routes,
		OnStop:      a.stop,
	})
}

func (a *App) stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()

	var errs []error
	if err := a.orch.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("bot: drain conversations: %w", err))
	}
	sent, failed := a.sender.Stats()
	logger.Info(ctx, "app", "sender.stats",
		slog.String("status", "ok"),
		slog.Uint64("sent", sent),
		slog.Uint64("failed", failed),
		slog.Int("sessions", a.orch.Store().Len()),
	)
	if err := a.infra.Close(); err != nil {
		errs = append(errs, fmt.Errorf("bot: close cache: %w", err))
	}
	return errors.Join(errs...)
}
