// Package access resolves what a Telegram user may do.
package access

import (
	"errors"
	"io"

	"github.com/m3rciful/lecturebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// ErrDenied is returned by operations the sender is not allowed to run.
var ErrDenied = errors.New("access denied")

// Bot is the subset of *tele.Bot handlers need beyond the current chat.
type Bot interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	File(file *tele.File) (io.ReadCloser, error)
	AdminsOf(chat *tele.Chat) ([]tele.ChatMember, error)
}

// DeveloperSet answers whether a user is a registered developer.
type DeveloperSet interface {
	IsDeveloper(userID int64) bool
}

// Rights is the resolved role of one user in one chat.
type Rights struct {
	Owner     bool
	Developer bool
	Admin     bool
}

// Has reports whether the rights include role.
func (r Rights) Has(role commands.Role) bool {
	switch role {
	case commands.RoleAny:
		return true
	case commands.RoleAdmin:
		return r.Admin
	case commands.RoleDeveloper:
		return r.Developer
	case commands.RoleOwner:
		return r.Owner
	}
	return false
}

// Checker resolves roles: owner from configuration, developers from the
// catalog, admins from the group's administrator list. Each role implies
// the ones below it.
type Checker struct {
	OwnerID    int64
	Developers DeveloperSet
	Bot        Bot
}

// Resolve returns the sender's rights in the chat of c.
func (ch *Checker) Resolve(c tele.Context) (Rights, error) {
	user := c.Sender()
	if user == nil {
		return Rights{}, nil
	}
	var r Rights
	r.Owner = ch.OwnerID != 0 && user.ID == ch.OwnerID
	r.Developer = r.Owner || (ch.Developers != nil && ch.Developers.IsDeveloper(user.ID))
	r.Admin = r.Developer
	if !r.Admin {
		admin, err := ch.isChatAdmin(c.Chat(), user.ID)
		if err != nil {
			return r, err
		}
		r.Admin = admin
	}
	return r, nil
}

// Allows implements the role middleware's authorizer.
func (ch *Checker) Allows(c tele.Context, role commands.Role) (bool, error) {
	if role == commands.RoleAny {
		return true, nil
	}
	r, err := ch.Resolve(c)
	if err != nil {
		return false, err
	}
	return r.Has(role), nil
}

func (ch *Checker) isChatAdmin(chat *tele.Chat, userID int64) (bool, error) {
	if ch.Bot == nil || chat == nil || (chat.Type != tele.ChatGroup && chat.Type != tele.ChatSuperGroup) {
		return false, nil
	}
	admins, err := ch.Bot.AdminsOf(chat)
	if err != nil {
		return false, err
	}
	for _, m := range admins {
		if m.User != nil && m.User.ID == userID {
			return true, nil
		}
	}
	return false, nil
}
