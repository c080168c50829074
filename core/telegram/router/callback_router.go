package router

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/tradebot/core/telegram"
)

// CallbackRoute acknowledges every callback query so the client stops its
// spinner, then passes it to h.
func CallbackRoute(h tele.HandlerFunc) tg.Route {
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler: summarize("callback", func(c tele.Context) error {
			if c.Callback() == nil {
				return nil
			}
			// A failed answer only leaves the spinner running.
			_ = c.Respond()
			return h(c)
		}),
	}
}
