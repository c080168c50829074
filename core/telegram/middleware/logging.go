package middleware

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/tradebot/core/logger"
	tghelpers "github.com/m3rciful/tradebot/core/telegram/helpers"
)

// LoggerMiddleware assigns the request id, stores the logging context on c
// and emits a sampled debug line describing the received update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		updateID, userID, chatID := tghelpers.Identity(c)
		rid := logger.BuildRID(updateID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())
		ctx := tghelpers.BuildContext(c)

		if logger.ShouldSampleDebug() {
			attrs := []slog.Attr{slog.String("status", "ok")}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if user := c.Sender(); user != nil && user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			upd := c.Update()
			switch {
			case upd.Callback != nil:
				attrs = append(attrs,
					slog.String("event_kind", "callback"),
					slog.String("payload", logger.SanitizeLimit(upd.Callback.Data, 128)),
				)
			case upd.Message != nil:
				attrs = append(attrs,
					slog.String("event_kind", "message"),
					slog.String("payload", logger.SanitizeLimit(upd.Message.Text, 256)),
				)
			}
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}

// UpdateStart returns when LoggerMiddleware saw the update, or the zero time.
func UpdateStart(c tele.Context) time.Time {
	t, _ := c.Get("update_start").(time.Time)
	return t
}
