package middleware

import (
	"log/slog"

	"github.com/m3rciful/lecturebot/core/logger"
	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Acquirer grants at most one in-flight update per user.
type Acquirer interface {
	TryAcquire(userID int64) (release func(), ok bool)
}

// Busy drops an update while another update from the same user is still being
// handled, so a step handler suspended on the network never races a second message.
func Busy(guard Acquirer, onBusy tele.HandlerFunc) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			uid := tghelpers.UserID(c)
			if guard == nil || uid == 0 || c.Query() != nil {
				return next(c)
			}
			release, ok := guard.TryAcquire(uid)
			if !ok {
				logger.Debug(tghelpers.BuildContext(c), logger.CompTG, "busy.drop",
					slog.Int64("user_id", uid),
				)
				if onBusy != nil {
					return onBusy(c)
				}
				return nil
			}
			defer release()
			return next(c)
		}
	}
}
