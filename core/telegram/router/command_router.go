package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/lecturebot/core/logger"
	"github.com/m3rciful/lecturebot/core/metrics"
	tg "github.com/m3rciful/lecturebot/core/telegram"
	"github.com/m3rciful/lecturebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"
	"github.com/m3rciful/lecturebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	Access   middleware.AccessOptions
	Boundary Boundary
}

// CommandRoutes exposes every registered command as a /name endpoint. The
// "!"-prefixed spellings and aliases arrive as plain text and are resolved
// by TextRoutes with the same wrapping.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for name, def := range reg.Commands() {
		h := wrapCommand(name, def, opts)
		routes = append(routes, tg.Route{
			Endpoint: "/" + name,
			Handler: func(c tele.Context) error {
				return h(c, c.Message().Payload)
			},
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}

type commandHandler func(c tele.Context, args string) error

// wrapCommand applies chat-type and role checks, then runs the command inside
// the error boundary.
func wrapCommand(name string, def commands.Command, opts CommandRouteOptions) commandHandler {
	h := def.Handler
	h = middleware.RequireRole(opts.Access, def.Role)(h)
	if def.GroupOnly {
		h = middleware.GroupOnly(opts.Access)(h)
	}
	handlerName := "cmd." + normalizeHandlerName(name)
	return func(c tele.Context, args string) error {
		start := time.Now()
		tghelpers.SetArgs(c, args)
		metrics.CommandExecuted(name)
		return handleWithSummary(c, opts.Boundary, handlerName, start, func() error {
			return h(c)
		})
	}
}
