package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/tradebot/core/config"
	"github.com/m3rciful/tradebot/core/logger"
)

// Middleware describes a global bot middleware registered via bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route binds a handler to a telebot endpoint (command string or tele.On* constant).
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls Run.
type RunOptions struct {
	Registry    *Registry
	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup bool

	OnStart func(ctx context.Context) error
	// OnStop runs after the poller has stopped; no handler is running anymore.
	OnStop func(ctx context.Context) error
}

// NewBot builds a telebot instance for cfg. Updates are processed on the
// poller goroutine one at a time, which keeps them in arrival order; handlers
// must hand work off instead of blocking.
func NewBot(cfg *coreconfig.Config) (*tele.Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("telegram: nil config provided")
	}
	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:       cfg.Telegram.Token,
		Poller:      BuildPoller(cfg),
		Client:      BuildHTTPClient(HTTPClientOptions{PollTimeout: PollTimeout(cfg.Telegram)}),
		Synchronous: true,
		OnError:     logBotError,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	switch p := bot.Poller.(type) {
	case *tele.Webhook:
		logger.TG.Info("webhook mode",
			slog.String("event", "mode"),
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
			slog.Duration("duration", logger.Took(start)),
		)
	default:
		logger.TG.Info("polling mode",
			slog.String("event", "mode"),
			slog.String("mode", coreconfig.RunModeLongpoll),
			slog.Duration("timeout", PollTimeout(cfg.Telegram)),
			slog.Duration("duration", logger.Took(start)),
		)
	}
	return bot, nil
}

// Run wires middlewares and routes into bot and processes updates until ctx
// is done. A cancelled context is a clean shutdown and returns nil.
func Run(ctx context.Context, bot *tele.Bot, opts RunOptions) error {
	if bot == nil {
		return fmt.Errorf("telegram: nil bot")
	}

	if _, polling := bot.Poller.(*tele.LongPoller); polling && !opts.DisableWebhookCleanup {
		// A leftover webhook makes getUpdates fail with 409.
		if err := bot.RemoveWebhook(); err != nil {
			logger.TG.Warn("failed to delete webhook",
				slog.String("event", "delete_webhook"),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	if opts.Registry != nil {
		SetupCommands(bot, opts.Registry)
	}

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx); err != nil {
			return err
		}
	}

	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-runDone
		runErr = ctx.Err()
	case <-runDone:
	}

	if opts.OnStop != nil {
		if err := opts.OnStop(context.WithoutCancel(ctx)); err != nil {
			return err
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func logBotError(err error, c tele.Context) {
	attrs := []slog.Attr{
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		slog.String("err_code", logger.ErrorCode(err)),
	}
	ctx := context.Background()
	if c != nil {
		ctx = logger.WithUpdateMeta(ctx, c.Update().ID, senderID(c), chatID(c))
	}
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelError, "bot.error", attrs...)
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

func chatID(c tele.Context) int64 {
	if ch := c.Chat(); ch != nil {
		return ch.ID
	}
	return 0
}
