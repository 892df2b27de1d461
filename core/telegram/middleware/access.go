package middleware

import (
	"log/slog"

	"github.com/m3rciful/lecturebot/core/logger"
	"github.com/m3rciful/lecturebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Authorizer decides whether the sender of c holds role.
type Authorizer interface {
	Allows(c tele.Context, role commands.Role) (bool, error)
}

// AccessOptions defines how role and chat-type checks behave.
type AccessOptions struct {
	Authorizer Authorizer
	// OnReject runs when the sender lacks the role.
	OnReject tele.HandlerFunc
	// OnPrivate runs when a group-only command arrives in a private chat.
	OnPrivate tele.HandlerFunc
}

// RequireRole lets the update through only when the sender holds role.
func RequireRole(opts AccessOptions, role commands.Role) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		if role == commands.RoleAny || opts.Authorizer == nil {
			return next
		}
		return func(c tele.Context) error {
			ok, err := opts.Authorizer.Allows(c, role)
			if err != nil {
				return err
			}
			if !ok {
				logger.Info(tghelpers.BuildContext(c), logger.CompTG, "access.denied",
					slog.String("role", string(role)),
				)
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}

// GroupOnly refuses updates from private chats.
func GroupOnly(opts AccessOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if !tghelpers.IsGroup(c) {
				if opts.OnPrivate != nil {
					return opts.OnPrivate(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
