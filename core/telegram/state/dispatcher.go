package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/m3rciful/lecturebot/core/logger"
	"github.com/m3rciful/lecturebot/core/metrics"
	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"
	"github.com/m3rciful/lecturebot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Callback actions of numbered menus.
const (
	PickAction   = "pick"
	CancelAction = "cancel"
)

const inputKey = "state_input"

// Handler processes one message for the step it is registered under. conv is
// a private copy of the stored record.
type Handler func(c tele.Context, conv *Conversation) error

// Texts holds the user-facing messages the dispatcher sends itself.
type Texts struct {
	Cancelled     string
	InvalidChoice string
	MenuFooter    string
	// Expired answers a menu button pressed after the conversation is gone.
	Expired string
}

// Dispatcher routes messages of users with a live conversation to the
// handler of the conversation's step.
type Dispatcher struct {
	store Store
	texts Texts

	mu       sync.RWMutex
	handlers map[Step]Handler
}

// NewDispatcher builds a dispatcher over store.
func NewDispatcher(store Store, texts Texts) *Dispatcher {
	return &Dispatcher{
		store:    store,
		texts:    texts,
		handlers: make(map[Step]Handler),
	}
}

// Store returns the backing store.
func (d *Dispatcher) Store() Store { return d.store }

// Texts returns the configured messages.
func (d *Dispatcher) Texts() Texts { return d.texts }

// Handle registers h for step. Registering a step twice panics.
func (d *Dispatcher) Handle(step Step, h Handler) {
	if step == "" || h == nil {
		panic("state: invalid handler registration")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, dup := d.handlers[step]; dup {
		panic(fmt.Sprintf("state: step %q registered twice", step))
	}
	d.handlers[step] = h
}

func (d *Dispatcher) handler(step Step) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[step]
	return h, ok
}

// InProgress reports whether user has a live conversation.
func (d *Dispatcher) InProgress(ctx context.Context, user int64) bool {
	_, err := d.store.Get(ctx, user)
	return err == nil
}

// Dispatch runs the step handler for the text of c. handled is false when the
// user has no conversation or its step has no handler, so the caller can
// fall through to other routing.
func (d *Dispatcher) Dispatch(c tele.Context) (bool, error) {
	return d.DispatchInput(c, c.Text())
}

// DispatchInput is Dispatch with explicit input.
func (d *Dispatcher) DispatchInput(c tele.Context, input string) (bool, error) {
	ctx := tghelpers.BuildContext(c)
	user := tghelpers.UserID(c)
	conv, err := d.store.Get(ctx, user)
	if errors.Is(err, ErrNoConversation) {
		return false, nil
	}
	if err != nil {
		return true, err
	}
	return d.run(ctx, c, user, conv, input)
}

// DispatchPick feeds a number pad press into the conversation. A press from a
// pad shown for a different step than the current one is not handled.
func (d *Dispatcher) DispatchPick(c tele.Context, payload string) (bool, error) {
	step, choice, ok := ParsePick(payload)
	if !ok {
		return false, nil
	}
	ctx := tghelpers.BuildContext(c)
	user := tghelpers.UserID(c)
	conv, err := d.store.Get(ctx, user)
	if errors.Is(err, ErrNoConversation) {
		return false, nil
	}
	if err != nil {
		return true, err
	}
	if conv.Step != step {
		logger.Info(ctx, logger.CompFSM, "pick.stale",
			slog.String("pad_step", string(step)),
			slog.String("step", string(conv.Step)),
		)
		return false, nil
	}
	return d.run(ctx, c, user, conv, choice)
}

func (d *Dispatcher) run(ctx context.Context, c tele.Context, user int64, conv *Conversation, input string) (bool, error) {
	h, ok := d.handler(conv.Step)
	if !ok {
		logger.Warn(ctx, logger.CompFSM, "step.unknown", slog.String("step", string(conv.Step)))
		return false, nil
	}

	input = strings.TrimSpace(input)
	if IsCancel(input) {
		return true, d.cancel(ctx, c, user, conv.Step)
	}

	c.Set(inputKey, input)
	metrics.FlowStep(string(conv.Step))
	logger.Debug(ctx, logger.CompFSM, "step.dispatch", slog.String("step", string(conv.Step)))
	if err := h(c, conv); err != nil {
		if endErr := d.store.End(ctx, user); endErr != nil {
			logger.Warn(ctx, logger.CompFSM, "conversation.end_failed", logger.Err(endErr))
		}
		return true, fmt.Errorf("step %s: %w", conv.Step, err)
	}
	return true, nil
}

// Cancel aborts the user's conversation from the inline cancel button.
func (d *Dispatcher) Cancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	user := tghelpers.UserID(c)
	conv, err := d.store.Get(ctx, user)
	if errors.Is(err, ErrNoConversation) {
		return c.Send(d.texts.Expired)
	}
	if err != nil {
		return err
	}
	return d.cancel(ctx, c, user, conv.Step)
}

func (d *Dispatcher) cancel(ctx context.Context, c tele.Context, user int64, step Step) error {
	if err := d.store.End(ctx, user); err != nil {
		return err
	}
	logger.Info(ctx, logger.CompFSM, "conversation.cancelled", slog.String("step", string(step)))
	return c.Send(d.texts.Cancelled, keyboard.RemoveKeyboard())
}

// Begin starts a conversation for the sender of c.
func (d *Dispatcher) Begin(c tele.Context, step Step, patches ...Patch) error {
	return d.store.Start(tghelpers.BuildContext(c), tghelpers.UserID(c), step, patches...)
}

// Advance moves the sender's conversation to step.
func (d *Dispatcher) Advance(c tele.Context, step Step, patches ...Patch) error {
	return d.store.Advance(tghelpers.BuildContext(c), tghelpers.UserID(c), step, patches...)
}

// End removes the sender's conversation.
func (d *Dispatcher) End(c tele.Context) error {
	return d.store.End(tghelpers.BuildContext(c), tghelpers.UserID(c))
}

// Finish ends the conversation and sends a closing message.
func (d *Dispatcher) Finish(c tele.Context, what any, opts ...any) error {
	if err := d.End(c); err != nil {
		return err
	}
	return c.Send(what, opts...)
}

// ShowMenu sends prompt followed by the numbered options and a number pad
// bound to step.
func (d *Dispatcher) ShowMenu(c tele.Context, step Step, prompt string, opts []Option) error {
	return c.Send(RenderMenu(prompt, opts, d.texts.MenuFooter), MenuMarkup(step, len(opts)))
}

// Input returns the trimmed message or button payload being dispatched.
func Input(c tele.Context) string {
	if s, ok := c.Get(inputKey).(string); ok {
		return s
	}
	return strings.TrimSpace(c.Text())
}

// RenderMenu formats opts as "N. label" lines between prompt and footer.
func RenderMenu(prompt string, opts []Option, footer string) string {
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n")
	for i, o := range opts {
		fmt.Fprintf(&b, "\n%d. %s", i+1, o.Label)
	}
	if footer != "" {
		b.WriteString("\n\n")
		b.WriteString(footer)
	}
	return b.String()
}

// CancelMarkup is the cancel button shown under free-text prompts.
func CancelMarkup() *tele.ReplyMarkup {
	return keyboard.SingleCancelMarkup(CancelAction)
}

// MenuMarkup returns the inline number pad for an n-option menu shown at step.
func MenuMarkup(step Step, n int) *tele.ReplyMarkup {
	return keyboard.NumberPad(n, 5, PickAction, string(step), CancelAction)
}

// ParsePick splits a number pad payload into the step the pad was shown for
// and the pressed number.
func ParsePick(payload string) (Step, string, bool) {
	i := strings.LastIndex(payload, keyboard.PadScopeSep)
	if i <= 0 || i == len(payload)-1 {
		return "", "", false
	}
	return Step(payload[:i]), payload[i+1:], true
}
