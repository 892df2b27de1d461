package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/lecturebot/core/logger"
	tg "github.com/m3rciful/lecturebot/core/telegram"
	"github.com/m3rciful/lecturebot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	// NotFound runs when neither the key nor the registry fallback is set.
	NotFound tele.HandlerFunc
	Boundary Boundary
}

// CallbackRoute answers every button press at once, so the client stops its
// spinner, then runs the handler registered for the callback key.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		start := time.Now()
		key := callbacks.CallbackKey(c)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{
			slog.String("cb_key", key),
			slog.String("cb_payload", logger.SanitizeLimit(callbacks.CallbackPayload(c), 32)),
		}
		_ = c.Respond()

		h, found := resolveCallback(reg, opts, key)
		if !found {
			extras = append(extras, slog.String("reason", "not_found"))
		}
		return handleWithSummary(c, opts.Boundary, name, start, func() error {
			if h == nil {
				return nil
			}
			return h(c)
		}, extras...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}

// resolveCallback returns the handler for key, or the first fallback set.
func resolveCallback(reg *tg.Registry, opts CallbackOptions, key string) (tele.HandlerFunc, bool) {
	if reg != nil {
		if h, ok := reg.GetCallback(key); ok && h != nil {
			return h, true
		}
		if fb := reg.CallbackNotFound(); fb != nil {
			return fb, false
		}
	}
	return opts.NotFound, false
}
