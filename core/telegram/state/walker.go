package state

import (
	"context"
	"strconv"
	"time"

	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Level is one menu of a hierarchical selection.
type Level struct {
	Step Step
	// Key names the resolved choice: Values[Key+"_id"] and Values[Key+"_name"].
	Key    string
	Prompt func(conv *Conversation) string
	// Options lists the children of the choices made so far.
	Options func(ctx context.Context, conv *Conversation) ([]Option, error)
	// Empty is sent, and the conversation ended, when Options returns nothing.
	Empty func(conv *Conversation) string
}

// Walker drives a chain of numbered menus, each filtered by the previous
// choice, and hands the result to Leaf.
type Walker struct {
	Levels []Level
	Leaf   Handler

	d *Dispatcher
}

// IDKey and NameKey return the value keys a level resolves into.
func IDKey(key string) string   { return key + "_id" }
func NameKey(key string) string { return key + "_name" }

// Register binds every level step on d.
func (w *Walker) Register(d *Dispatcher) {
	w.d = d
	for i := range w.Levels {
		d.Handle(w.Levels[i].Step, w.level(i))
	}
}

// Begin shows the first menu and starts the conversation. patches seed the
// record before the first options are computed.
func (w *Walker) Begin(c tele.Context, patches ...Patch) error {
	ctx := tghelpers.BuildContext(c)
	first := w.Levels[0]
	seed := newConversation(first.Step, time.Now(), patches)
	opts, err := first.Options(ctx, seed)
	if err != nil {
		return err
	}
	if len(opts) == 0 {
		return w.d.Finish(c, first.Empty(seed))
	}
	if err := w.d.Begin(c, first.Step, append(patches, WithOptions(opts))...); err != nil {
		return err
	}
	return w.d.ShowMenu(c, first.Step, first.Prompt(seed), opts)
}

func (w *Walker) level(i int) Handler {
	return func(c tele.Context, conv *Conversation) error {
		lvl := w.Levels[i]
		n, ok := ParseChoice(Input(c), len(conv.Options))
		if !ok {
			return c.Send(w.d.texts.InvalidChoice)
		}
		picked := conv.Options[n-1]
		chosen := []Patch{SetInt(IDKey(lvl.Key), picked.ID), Set(NameKey(lvl.Key), picked.Label)}
		apply(conv, chosen)

		if i == len(w.Levels)-1 {
			conv.Options = nil
			if err := w.d.Advance(c, conv.Step, append(chosen, ClearOptions())...); err != nil {
				return err
			}
			return w.Leaf(c, conv)
		}

		next := w.Levels[i+1]
		opts, err := next.Options(tghelpers.BuildContext(c), conv)
		if err != nil {
			return err
		}
		if len(opts) == 0 {
			return w.d.Finish(c, next.Empty(conv))
		}
		if err := w.d.Advance(c, next.Step, append(chosen, WithOptions(opts))...); err != nil {
			return err
		}
		conv.Step, conv.Options = next.Step, opts
		return w.d.ShowMenu(c, next.Step, next.Prompt(conv), opts)
	}
}

// ChoiceID is a convenience for leaf handlers.
func ChoiceID(conv *Conversation, key string) int64 {
	id, _ := strconv.ParseInt(conv.Value(IDKey(key)), 10, 64)
	return id
}
