package commands

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/m3rciful/lecturebot/core/buildinfo"
	"github.com/m3rciful/lecturebot/core/logger"
	"github.com/m3rciful/lecturebot/core/metrics"
	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"
	"github.com/m3rciful/lecturebot/internal/catalog"
	"github.com/m3rciful/lecturebot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

// Report forwards the arguments to the owner under a reference id.
func (h *Handlers) Report(c tele.Context) error {
	text := tghelpers.Args(c)
	if text == "" {
		return c.Reply(texts.Sign(texts.ReportUsage))
	}
	id := uuid.NewString()
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()
	if h.deps.OwnerID == 0 {
		logger.Warn(ctx, logger.CompApp, "report.no_owner", slog.String("report_id", id))
	} else {
		msg := texts.ReportForOwner(id, displayName(sender), tghelpers.UserID(c), text, h.deps.Now())
		if _, err := h.deps.Bot.Send(&tele.User{ID: h.deps.OwnerID}, msg); err != nil {
			return err
		}
	}
	logger.Info(ctx, logger.CompApp, "report.sent", slog.String("report_id", id))
	return c.Reply(texts.Sign(texts.ReportSent(id)))
}

func (h *Handlers) MyPermissions(c tele.Context) error {
	rights, err := h.deps.Access.Resolve(c)
	if err != nil {
		return err
	}
	u := c.Sender()
	return c.Reply(texts.Sign(texts.Permissions(displayName(u), tghelpers.UserID(c), rights.Owner, rights.Developer, rights.Admin)))
}

// developerTarget returns the user a message refers to: the author of the
// replied-to message, else the first text mention.
func developerTarget(m *tele.Message) *tele.User {
	if m == nil {
		return nil
	}
	if m.ReplyTo != nil && m.ReplyTo.Sender != nil {
		return m.ReplyTo.Sender
	}
	for _, e := range m.Entities {
		if e.Type == tele.EntityTMention && e.User != nil {
			return e.User
		}
	}
	return nil
}

// AddDeveloper grants developer rights to the referenced user.
func (h *Handlers) AddDeveloper(c tele.Context) error {
	target := developerTarget(c.Message())
	if target == nil || target.IsBot {
		return c.Reply(texts.Sign(texts.DeveloperUsage))
	}
	if h.deps.Catalog.IsDeveloper(target.ID) {
		return c.Reply(texts.Sign(texts.AlreadyDeveloper))
	}
	ctx := tghelpers.BuildContext(c)
	name := displayName(target)
	if err := h.deps.Catalog.AddDeveloper(ctx, catalog.Developer{UserID: target.ID, Name: name}); err != nil {
		return err
	}
	if _, err := h.deps.Bot.Send(target, texts.Sign(texts.DeveloperWelcome)); err != nil {
		logger.Warn(ctx, logger.CompApp, "developer.notify_failed", logger.Err(err),
			slog.Int64("developer_id", target.ID),
		)
	}
	return c.Reply(texts.Sign(texts.DeveloperAdded(name)))
}

// Stats reports runtime counters and catalog sizes.
func (h *Handlers) Stats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	lectures, err := h.deps.Catalog.CountLectures(ctx)
	if err != nil {
		return err
	}
	m := metrics.Read()
	active := m.ActiveConversations
	if h.deps.Conversations != nil {
		if n, err := h.deps.Conversations.Active(ctx); err == nil {
			active = n
		} else {
			logger.Warn(ctx, logger.CompFSM, "conversations.count_failed", logger.Err(err))
		}
	}
	counts := h.deps.Catalog.Cache().Counts()
	return c.Reply(texts.Sign(texts.StatsReport(texts.Stats{
		Version:       buildinfo.String(),
		Uptime:        m.Uptime,
		Messages:      m.Messages,
		Commands:      m.Commands,
		Errors:        m.Errors,
		Groups:        m.Groups,
		Conversations: active,
		Developers:    counts.Developers,
		Sections:      counts.Sections,
		Classes:       counts.Classes,
		Subjects:      counts.Subjects,
		Professors:    counts.Professors,
		CourseGroups:  counts.Groups,
		Lectures:      lectures,
	})))
}

// Restart replies, then stops the bot.
func (h *Handlers) Restart(c tele.Context) error {
	if err := c.Reply(texts.Sign(texts.Restarting)); err != nil {
		return err
	}
	logger.Info(tghelpers.BuildContext(c), logger.CompApp, "restart.requested")
	if h.deps.Restart != nil {
		h.deps.Restart()
	}
	return nil
}
