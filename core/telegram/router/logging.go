package router

import (
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/tradebot/core/logger"
	tghelpers "github.com/m3rciful/tradebot/core/telegram/helpers"
	"github.com/m3rciful/tradebot/core/telegram/middleware"
)

// routeWithSummary tags the context with name, runs fn and logs how the
// transport layer handed the update off.
func routeWithSummary(c tele.Context, name string, fn tele.HandlerFunc) error {
	ctx := tghelpers.WithHandler(c, name)
	start := middleware.UpdateStart(c)
	if start.IsZero() {
		start = time.Now()
	}

	err := fn(c)

	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("outcome", "ok"),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	}
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
		attrs[0] = slog.String("status", "fail")
		attrs[1] = slog.String("outcome", "fail")
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", logger.ErrorCode(err)),
		)
	}
	logger.LogEvent(ctx, logger.Component("tg"), level, "update.routed", attrs...)
	return err
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}
