package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/m3rciful/lecturebot/core/logger"
	"github.com/m3rciful/lecturebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// CommandPrefixes lists the characters that mark a message as a command.
const CommandPrefixes = "!/"

// Registry holds bot commands and callbacks.
type Registry struct {
	commands         map[string]commands.Command
	aliases          map[string]string
	callbacks        map[string]tele.HandlerFunc
	callbacksMu      sync.RWMutex
	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry creates an empty Registry with default fallbacks.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		aliases:   make(map[string]string),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		},
	}
}

// RegisterCommand adds a command under its canonical name. The name must be a
// valid Telegram command (lowercase latin, digits, underscore) so it can also be
// exposed as /name; aliases may use any script.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	name = normalizeName(name)
	if name == "" || cmd.Handler == nil || cmd.Description == "" {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "invalid"),
		)
		return errors.New("invalid command registration")
	}
	if !isTelegramCommand(name) {
		return fmt.Errorf("command name %q is not a valid telegram command", name)
	}
	if _, exists := r.aliases[name]; exists {
		return fmt.Errorf("command already registered: %s", name)
	}
	for _, alias := range cmd.Aliases {
		alias = normalizeName(alias)
		if owner, exists := r.aliases[alias]; exists {
			return fmt.Errorf("alias %q already bound to %s", alias, owner)
		}
	}

	r.commands[name] = cmd
	r.aliases[name] = name
	for _, alias := range cmd.Aliases {
		if alias = normalizeName(alias); alias != "" {
			r.aliases[alias] = name
		}
	}
	return nil
}

// ListCommands returns the Telegram menu entries, optionally hiding hidden and privileged commands.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for name, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.Role != commands.RoleAny) {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// ParseCommand splits a message such as "!بحث قانون" or "/search@mybot law"
// into the bare command token and the remaining arguments.
func ParseCommand(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" || !strings.ContainsRune(CommandPrefixes, rune(text[0])) {
		return "", "", false
	}
	head, rest := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		head, rest = text[:i], text[i:]
	}
	head = head[1:]
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	if head == "" {
		return "", "", false
	}
	return head, strings.TrimSpace(rest), true
}

// LookupCommand resolves the command at the start of text by name or alias and
// returns its canonical name, metadata and trailing arguments.
func (r *Registry) LookupCommand(text string) (string, commands.Command, string, bool) {
	token, args, ok := ParseCommand(text)
	if !ok {
		return "", commands.Command{}, "", false
	}
	name, ok := r.aliases[normalizeName(token)]
	if !ok {
		return "", commands.Command{}, "", false
	}
	return name, r.commands[name], args, true
}

// Commands returns all registered commands keyed by canonical name.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// RegisterCallback adds a callback handler mapped to its key.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.callback.skip",
			slog.String("key", key),
			slog.Bool("handler_nil", handler == nil),
		)
		return errors.New("invalid callback registration")
	}
	r.callbacksMu.Lock()
	defer r.callbacksMu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		return fmt.Errorf("callback already registered: %s", key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback safely returns handler by key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns sorted keys (for diagnostics).
func (r *Registry) ListCallbacks() []string {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	names := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetCallbackNotFound replaces the fallback handler for unknown callbacks.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.callbackNotFound = h
	}
}

// CallbackNotFound returns the current fallback callback handler.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return r.callbackNotFound
}

// SetTextFallback sets a global fallback handler for unknown text messages.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// InitBotCommands publishes the public command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	list := reg.ListCommands(true)
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			logger.Err(err),
		)
		return
	}
	logger.TWire.LogAttrs(context.Background(), slog.LevelInfo, "register.commands.set",
		slog.Int("count", len(list)),
	)
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimLeft(name, CommandPrefixes)
	return strings.ToLower(name)
}

func isTelegramCommand(name string) bool {
	if len(name) > 32 {
		return false
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_' {
			return false
		}
	}
	return true
}
