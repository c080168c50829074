package router

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/tradebot/core/telegram"
)

// TextRoute routes plain text, including slash commands that have no
// registered route, to h.
func TextRoute(h tele.HandlerFunc) tg.Route {
	return tg.Route{
		Endpoint: tele.OnText,
		Handler:  summarize("text", h),
	}
}

func summarize(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		return routeWithSummary(c, name, h)
	}
}
