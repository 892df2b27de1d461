package helpers

import (
	"context"

	"github.com/m3rciful/lecturebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const (
	contextKey = "logger_ctx"
	argsKey    = "command_args"
)

// StoreContext attaches reusable context to tele.Context for downstream helpers.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(contextKey, ctx)
}

// ContextFrom returns the context stored by middleware, if any.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(contextKey).(context.Context)
	return ctx, ok
}

// BuildContext constructs a context.Context from tele.Context, enriched with
// rid, user and chat for consistent service logging.
func BuildContext(c tele.Context) context.Context {
	if cached, ok := ContextFrom(c); ok {
		return cached
	}

	userID, chatID := UserID(c), ChatID(c)
	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(c.Update().ID, chatID, userID)
	}

	ctx := logger.WithRID(context.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, userID, chatID)
	StoreContext(c, ctx)
	return ctx
}

// WithHandler enriches stored context with handler metadata for downstream logs.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}

// UserID returns the sender id or 0.
func UserID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

// ChatID returns the chat id or 0.
func ChatID(c tele.Context) int64 {
	if ch := c.Chat(); ch != nil {
		return ch.ID
	}
	return 0
}

// IsGroup reports whether the update comes from a group or supergroup.
func IsGroup(c tele.Context) bool {
	ch := c.Chat()
	return ch != nil && (ch.Type == tele.ChatGroup || ch.Type == tele.ChatSuperGroup)
}

// SetArgs stores the text following a "!command" token.
func SetArgs(c tele.Context, args string) {
	c.Set(argsKey, args)
}

// Args returns the command arguments stored by the router, falling back to
// telebot's payload for slash commands.
func Args(c tele.Context) string {
	if s, ok := c.Get(argsKey).(string); ok {
		return s
	}
	if m := c.Message(); m != nil {
		return m.Payload
	}
	return ""
}
