package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/lecturebot/core/logger"
	"github.com/m3rciful/lecturebot/core/metrics"
	"github.com/m3rciful/lecturebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// LoggerMiddleware sets the rid, builds the request context and logs one
// receipt line per update. It also counts the update for the stats command.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if _, done := c.Get("rid").(string); done {
			return next(c)
		}
		upd := c.Update()
		userID, chatID := tghelpers.UserID(c), tghelpers.ChatID(c)

		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())

		ctx := logger.WithRID(context.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, userID, chatID)
		tghelpers.StoreContext(c, ctx)

		metrics.MessageProcessed()
		if tghelpers.IsGroup(c) {
			metrics.SeeGroup(chatID)
		}

		attrs := []slog.Attr{slog.Int("update_id", upd.ID)}
		if chat := c.Chat(); chat != nil {
			attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
		}
		if user := c.Sender(); user != nil && user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}
		switch {
		case upd.Callback != nil:
			key, payload := callbacks.ParseCallbackData(upd.Callback)
			attrs = append(attrs, slog.String("cb_key", key), slog.String("payload", logger.SanitizeLimit(payload, 64)))
		case upd.Message != nil && upd.Message.Document != nil:
			attrs = append(attrs,
				slog.String("doc_mime", upd.Message.Document.MIME),
				slog.String("doc_name", logger.SanitizeLimit(upd.Message.Document.FileName, 128)),
			)
		case upd.Message != nil:
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.Message.Text, 256)))
		}
		logger.Debug(ctx, logger.CompTG, "update.received", attrs...)

		return next(c)
	}
}
