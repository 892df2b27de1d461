package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/lecturebot/core/logger"
	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// ErrPanic wraps a recovered panic value.
type ErrPanic struct{ Value any }

func (e ErrPanic) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// RecoverMiddleware converts a handler panic into an ErrPanic error so the
// router's error boundary can clean up and reply.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(tghelpers.BuildContext(c), logger.CompTG, "tg.panic",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				err = ErrPanic{Value: r}
			}
		}()
		return next(c)
	}
}
