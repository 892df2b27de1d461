package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/lecturebot/core/logger"
	"github.com/m3rciful/lecturebot/core/metrics"
	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"
	"github.com/m3rciful/lecturebot/core/telegram/netutil"
	"github.com/m3rciful/lecturebot/core/telegram/router"
	"github.com/m3rciful/lecturebot/core/telegram/state"
	"github.com/m3rciful/lecturebot/internal/access"
	"github.com/m3rciful/lecturebot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

// classify maps a handler error to a metrics label and the user reply.
func classify(err error) (kind, reply string) {
	switch {
	case errors.Is(err, access.ErrDenied):
		return "denied", texts.Denied
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout", texts.Timeout
	case netutil.IsTransient(err):
		return "unavailable", texts.Unavailable
	}
	return "internal", texts.Failure
}

// Boundary logs and counts a failed update, ends the sender's conversation
// and answers with a reply matching the failure.
func Boundary(d *state.Dispatcher) router.Boundary {
	return func(c tele.Context, handler string, err error) error {
		ctx := tghelpers.BuildContext(c)
		kind, reply := classify(err)
		metrics.Error(kind)
		logger.Error(ctx, logger.CompApp, "handler.failed",
			slog.String("handler", handler),
			slog.String("kind", kind),
			logger.Err(err),
		)
		if d != nil && c.Sender() != nil {
			if endErr := d.End(c); endErr != nil {
				logger.Warn(ctx, logger.CompFSM, "conversation.end_failed", logger.Err(endErr))
			}
		}
		if sendErr := c.Send(reply); sendErr != nil {
			logger.Warn(ctx, logger.CompApp, "boundary.reply_failed", logger.Err(sendErr))
		}
		return nil
	}
}
