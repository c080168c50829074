package router

import (
	"log/slog"

	"github.com/m3rciful/tradebot/core/logger"
	tg "github.com/m3rciful/tradebot/core/telegram"
)

// CommandRoutes turns every registered command into a route.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for name, def := range reg.Commands() {
		handlerName := "command." + normalizeHandlerName(name)
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler:  summarize(handlerName, def.Handler),
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "commands"),
		slog.Int("count", len(routes)),
	)
	return routes
}
