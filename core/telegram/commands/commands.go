package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Role is the minimum privilege a command requires.
type Role string

const (
	RoleAny       Role = ""
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleOwner     Role = "owner"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	Role        Role
	// GroupOnly commands are refused in private chats.
	GroupOnly bool
	Hidden    bool
	// Aliases are alternative names, typically the Arabic spelling.
	Aliases []string
}
