// Package flows implements the guided conversations: system setup, course
// management, lecture upload and lecture download. Each flow registers its
// step handlers on a state.Dispatcher and exposes Start as a command handler.
package flows

import (
	"context"
	"time"

	"github.com/m3rciful/lecturebot/core/telegram/state"
	"github.com/m3rciful/lecturebot/internal/access"
	"github.com/m3rciful/lecturebot/internal/catalog"
	"github.com/m3rciful/lecturebot/internal/filehost"
	"github.com/m3rciful/lecturebot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

// FileHost stores uploaded lecture files.
type FileHost interface {
	Enabled() bool
	Upload(ctx context.Context, path string, content []byte, message string) (filehost.File, error)
	Remove(ctx context.Context, f filehost.File, message string) error
}

// Deps are the collaborators shared by all flows.
type Deps struct {
	Dispatcher    *state.Dispatcher
	Catalog       *catalog.Service
	Bot           access.Bot
	Files         FileHost
	UploadTimeout time.Duration
}

// Set holds the registered flows.
type Set struct {
	Setup        *Setup
	Manage       *Manage
	AddLecture   *AddLecture
	ViewLectures *ViewLectures
}

// Register binds every flow's steps on deps.Dispatcher.
func Register(deps Deps) *Set {
	return &Set{
		Setup:        NewSetup(deps),
		Manage:       NewManage(deps),
		AddLecture:   NewAddLecture(deps),
		ViewLectures: NewViewLectures(deps),
	}
}

// DispatcherTexts are the dispatcher messages in the bot's language.
func DispatcherTexts() state.Texts {
	return state.Texts{
		Cancelled:     texts.Cancelled,
		InvalidChoice: texts.InvalidChoice,
		MenuFooter:    texts.MenuFooter,
		Expired:       texts.Expired,
	}
}

func itemOptions(items []catalog.Item) []state.Option {
	opts := make([]state.Option, 0, len(items))
	for _, it := range items {
		opts = append(opts, state.Option{ID: it.ID, Label: it.Name})
	}
	return opts
}

func labels(opts []state.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Label
	}
	return out
}

func key(k catalog.Kind) string { return string(k) }

func constant(s string) func(*state.Conversation) string {
	return func(*state.Conversation) string { return s }
}

func sectionLevel(step state.Step, cache *catalog.Cache) state.Level {
	return state.Level{
		Step:   step,
		Key:    key(catalog.KindSection),
		Prompt: constant(texts.PickSection),
		Options: func(context.Context, *state.Conversation) ([]state.Option, error) {
			return itemOptions(cache.Items(catalog.KindSection, 0)), nil
		},
		Empty: constant(texts.NoSections),
	}
}

func classLevel(step state.Step, cache *catalog.Cache) state.Level {
	return state.Level{
		Step: step,
		Key:  key(catalog.KindClass),
		Prompt: func(conv *state.Conversation) string {
			return texts.PickClassIn(conv.Value(state.NameKey(key(catalog.KindSection))))
		},
		Options: func(_ context.Context, conv *state.Conversation) ([]state.Option, error) {
			section := state.ChoiceID(conv, key(catalog.KindSection))
			return itemOptions(cache.Items(catalog.KindClass, section)), nil
		},
		Empty: constant(texts.NoClasses),
	}
}

func subjectLevel(step state.Step, cache *catalog.Cache) state.Level {
	return state.Level{
		Step: step,
		Key:  key(catalog.KindSubject),
		Prompt: func(conv *state.Conversation) string {
			return texts.PickSubjectIn(conv.Value(state.NameKey(key(catalog.KindClass))))
		},
		Options: func(_ context.Context, conv *state.Conversation) ([]state.Option, error) {
			class := state.ChoiceID(conv, key(catalog.KindClass))
			return itemOptions(cache.Items(catalog.KindSubject, class)), nil
		},
		Empty: constant(texts.NoSubjects),
	}
}

func groupLevel(step state.Step, cache *catalog.Cache) state.Level {
	return state.Level{
		Step:   step,
		Key:    key(catalog.KindGroup),
		Prompt: constant(texts.PickGroup),
		Options: func(_ context.Context, conv *state.Conversation) ([]state.Option, error) {
			class := state.ChoiceID(conv, key(catalog.KindClass))
			return itemOptions(cache.Items(catalog.KindGroup, class)), nil
		},
		Empty: constant(texts.NoGroups),
	}
}

func professorLevel(step state.Step, cache *catalog.Cache) state.Level {
	return state.Level{
		Step:   step,
		Key:    key(catalog.KindProfessor),
		Prompt: constant(texts.PickProfessor),
		Options: func(context.Context, *state.Conversation) ([]state.Option, error) {
			return itemOptions(cache.Items(catalog.KindProfessor, 0)), nil
		},
		Empty: constant(texts.NoProfessors),
	}
}

// ask sends a free-text prompt with a cancel button.
func ask(c tele.Context, text string) error {
	return c.Send(text, state.CancelMarkup())
}

// sendPad sends text with a number pad of n buttons answering step.
func sendPad(c tele.Context, step state.Step, text string, n int) error {
	return c.Send(text, state.MenuMarkup(step, n))
}
