// Package commands implements the one-shot bot commands: help, search,
// lecture listing, AI helpers, reports, permissions and owner tools.
package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tg "github.com/m3rciful/lecturebot/core/telegram"
	tgcmd "github.com/m3rciful/lecturebot/core/telegram/commands"
	"github.com/m3rciful/lecturebot/internal/access"
	"github.com/m3rciful/lecturebot/internal/catalog"
	"github.com/m3rciful/lecturebot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

const (
	defaultListLimit = 30
	defaultAITimeout = 60 * time.Second
)

// Completer answers a prompt.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// Resolver resolves the sender's rights.
type Resolver interface {
	Resolve(c tele.Context) (access.Rights, error)
}

// ActiveCounter reports the number of live conversations.
type ActiveCounter interface {
	Active(ctx context.Context) (int, error)
}

// Deps are the collaborators of the command handlers.
type Deps struct {
	Catalog       *catalog.Service
	Access        Resolver
	AI            Completer
	Bot           access.Bot
	Conversations ActiveCounter
	Registry      *tg.Registry
	OwnerID       int64
	// Restart stops the bot; the supervisor brings it back.
	Restart   func()
	AITimeout time.Duration
	ListLimit int
	Now       func() time.Time
}

// Handlers holds the command handlers.
type Handlers struct {
	deps Deps
}

func New(deps Deps) *Handlers {
	if deps.AITimeout <= 0 {
		deps.AITimeout = defaultAITimeout
	}
	if deps.ListLimit <= 0 {
		deps.ListLimit = defaultListLimit
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Handlers{deps: deps}
}

// Spec binds a canonical command name to its definition.
type Spec struct {
	Name    string
	Command tgcmd.Command
}

// Specs lists the stateless commands.
func (h *Handlers) Specs() []Spec {
	return []Spec{
		{"help", tgcmd.Command{Handler: h.Help, Description: "عرض المساعدة", Aliases: []string{"مساعدة"}}},
		{"commands", tgcmd.Command{Handler: h.Commands, Description: "عرض قائمة الأوامر", Aliases: []string{"أوامر"}}},
		{"search", tgcmd.Command{Handler: h.Search, Description: "البحث عن مادة", Aliases: []string{"بحث"}}},
		{"list_lectures", tgcmd.Command{Handler: h.ListLectures, Description: "عرض قائمة المحاضرات", GroupOnly: true, Aliases: []string{"قائمة_المحاضرات"}}},
		{"question", tgcmd.Command{Handler: h.Question, Description: "طرح سؤال على الذكاء الاصطناعي", Aliases: []string{"سؤال"}}},
		{"translate", tgcmd.Command{Handler: h.Translate, Description: "ترجمة نص إلى العربية", Aliases: []string{"ترجمة"}}},
		{"summarize", tgcmd.Command{Handler: h.Summarize, Description: "تلخيص نص", Aliases: []string{"تلخيص"}}},
		{"report", tgcmd.Command{Handler: h.Report, Description: "الإبلاغ عن مشكلة", Aliases: []string{"إبلاغ", "ابلاغ"}}},
		{"my_permissions", tgcmd.Command{Handler: h.MyPermissions, Description: "عرض صلاحياتك", Aliases: []string{"صلاحياتي"}}},
		{"add_developer", tgcmd.Command{Handler: h.AddDeveloper, Description: "إضافة مطور جديد", Role: tgcmd.RoleOwner, GroupOnly: true, Aliases: []string{"اضافة_مطور"}}},
		{"stats", tgcmd.Command{Handler: h.Stats, Description: "عرض إحصائيات البوت", Role: tgcmd.RoleOwner, Aliases: []string{"احصائيات", "إحصائيات"}}},
		{"restart", tgcmd.Command{Handler: h.Restart, Description: "إعادة تشغيل البوت", Role: tgcmd.RoleOwner, Aliases: []string{"اعادة_تشغيل", "إعادة_تشغيل"}}},
	}
}

// Register adds every spec to reg.
func Register(reg *tg.Registry, specs ...Spec) error {
	for _, s := range specs {
		if err := reg.RegisterCommand(s.Name, s.Command); err != nil {
			return fmt.Errorf("register %s: %w", s.Name, err)
		}
	}
	return nil
}

func (h *Handlers) Help(c tele.Context) error {
	return c.Reply(texts.Sign(texts.Help))
}

// Commands lists every registered command with its first alias and access note.
func (h *Handlers) Commands(c tele.Context) error {
	if h.deps.Registry == nil {
		return c.Reply(texts.Sign(texts.Help))
	}
	all := h.deps.Registry.Commands()
	names := make([]string, 0, len(all))
	for name, cmd := range all {
		if !cmd.Hidden {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	lines := make([]texts.CommandLine, 0, len(names))
	for _, name := range names {
		cmd := all[name]
		alias := name
		if len(cmd.Aliases) > 0 {
			alias = cmd.Aliases[0]
		}
		lines = append(lines, texts.CommandLine{
			Name:        name,
			Alias:       alias,
			Description: cmd.Description,
			Role:        string(cmd.Role),
			GroupOnly:   cmd.GroupOnly,
		})
	}
	return c.Reply(texts.Sign(texts.CommandsList(lines)))
}

func displayName(u *tele.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	switch {
	case name != "":
		return name
	case u.Username != "":
		return "@" + u.Username
	}
	return fmt.Sprint(u.ID)
}
