package state

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"strconv"
	"time"
)

// DefaultTTL is how long a conversation may stay idle before it expires.
const DefaultTTL = 30 * time.Minute

var (
	// ErrNoConversation is returned when the user has no live conversation.
	ErrNoConversation = errors.New("state: no conversation")
	// ErrEmptyStep is returned by Start when no step is given.
	ErrEmptyStep = errors.New("state: empty step")
)

// Step names the handler that applies to the next message of a conversation.
type Step string

// Option is one entry of a numbered menu.
type Option struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// Conversation is the per-user record of an unfinished interaction.
type Conversation struct {
	Step      Step              `json:"step"`
	Values    map[string]string `json:"values,omitempty"`
	Options   []Option          `json:"options,omitempty"`
	Draft     json.RawMessage   `json:"draft,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Value returns Values[key] or "".
func (c *Conversation) Value(key string) string {
	if c == nil || c.Values == nil {
		return ""
	}
	return c.Values[key]
}

// Int returns Values[key] parsed as an int64.
func (c *Conversation) Int(key string) (int64, bool) {
	v := c.Value(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// DecodeDraft unmarshals the draft into dst. An empty draft leaves dst untouched.
func (c *Conversation) DecodeDraft(dst any) error {
	if c == nil || len(c.Draft) == 0 {
		return nil
	}
	return json.Unmarshal(c.Draft, dst)
}

func (c *Conversation) clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Values = maps.Clone(c.Values)
	out.Options = slices.Clone(c.Options)
	out.Draft = slices.Clone(c.Draft)
	return &out
}

// Patch mutates a conversation as part of Start or Advance.
type Patch func(*Conversation)

// Set stores a string value.
func Set(key, value string) Patch {
	return func(c *Conversation) {
		if c.Values == nil {
			c.Values = make(map[string]string)
		}
		c.Values[key] = value
	}
}

// SetInt stores an integer value.
func SetInt(key string, value int64) Patch {
	return Set(key, strconv.FormatInt(value, 10))
}

// WithOptions records the menu currently shown to the user.
func WithOptions(opts []Option) Patch {
	return func(c *Conversation) { c.Options = slices.Clone(opts) }
}

// ClearOptions forgets the last menu.
func ClearOptions() Patch {
	return func(c *Conversation) { c.Options = nil }
}

// WithDraft replaces the flow-specific accumulator.
func WithDraft(raw json.RawMessage) Patch {
	return func(c *Conversation) { c.Draft = slices.Clone(raw) }
}

// Store persists conversations keyed by user id.
type Store interface {
	// Start creates a fresh conversation, replacing any previous one.
	Start(ctx context.Context, user int64, step Step, patches ...Patch) error
	// Get returns a copy of the live conversation or ErrNoConversation.
	Get(ctx context.Context, user int64) (*Conversation, error)
	// Advance applies patches and moves the conversation to step.
	Advance(ctx context.Context, user int64, step Step, patches ...Patch) error
	// End removes the conversation. Ending a missing conversation is not an error.
	End(ctx context.Context, user int64) error
}

func newConversation(step Step, now time.Time, patches []Patch) *Conversation {
	conv := &Conversation{
		Step:      step,
		Values:    make(map[string]string),
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(conv, patches)
	return conv
}

func apply(conv *Conversation, patches []Patch) {
	for _, p := range patches {
		if p != nil {
			p(conv)
		}
	}
}
