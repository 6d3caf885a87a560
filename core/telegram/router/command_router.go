package router

import (
	"log/slog"

	"github.com/m3rciful/pqbot/core/logger"
	tg "github.com/m3rciful/pqbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes binds every registered command and alias to its handler.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}
	endpoints := reg.Endpoints()
	routes := make([]tg.Route, 0, len(endpoints))
	for endpoint, def := range endpoints {
		name := HandlerName(endpoint)
		h := def.Handler
		routes = append(routes, tg.Route{
			Endpoint: endpoint,
			Handler: func(c tele.Context) error {
				return handleWithSummary(c, name, h)
			},
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("count", len(routes)),
	)
	return routes
}
