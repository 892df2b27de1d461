package router

import (
	"time"

	tg "github.com/m3rciful/lecturebot/core/telegram"
	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// FSM is the conversation dispatcher seen by the router.
type FSM interface {
	Dispatch(c tele.Context) (handled bool, err error)
}

// TextOptions controls routing of text and document updates.
type TextOptions struct {
	Commands        CommandRouteOptions
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes routes plain messages. A registered command always wins, which
// also replaces any conversation it starts; other text goes to the user's
// conversation, then to the fallbacks.
func TextRoutes(fsm FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	boundary := opts.Commands.Boundary
	handler := func(c tele.Context) error {
		start := time.Now()

		if reg != nil {
			if name, cmd, args, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil {
				return wrapCommand(name, cmd, opts.Commands)(c, args)
			}
		}

		if handled, err := dispatchFSM(c, fsm, boundary, "fsm", start); handled {
			return err
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, boundary, "fallback", start, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, boundary, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	docHandler := func(c tele.Context) error {
		start := time.Now()
		if handled, err := dispatchFSM(c, fsm, boundary, "fsm_document", start); handled {
			return err
		}
		if opts.UnknownDocument != nil {
			return handleWithSummary(c, boundary, "unexpected_document", start, func() error {
				return opts.UnknownDocument(c)
			})
		}
		logHandlerSummary(c, "unexpected_document", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: handler},
		{Endpoint: tele.OnDocument, Handler: docHandler},
	}
}

func dispatchFSM(c tele.Context, fsm FSM, boundary Boundary, name string, start time.Time) (bool, error) {
	if fsm == nil {
		return false, nil
	}
	tghelpers.WithHandler(c, name)
	handled, err := fsm.Dispatch(c)
	if !handled {
		return false, nil
	}
	logHandlerSummary(c, name, start, "", "", err)
	if err != nil && boundary != nil {
		return true, boundary(c, name, err)
	}
	return true, err
}

// InlineRoute binds h to inline queries.
func InlineRoute(h tele.HandlerFunc, boundary Boundary) tg.Route {
	return tg.Route{
		Endpoint: tele.OnQuery,
		Handler: func(c tele.Context) error {
			return handleWithSummary(c, boundary, "inline", time.Now(), func() error {
				return h(c)
			})
		},
	}
}
