package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/lecturebot/core/telegram/teletest"

	tele "gopkg.in/telebot.v4"
)

var testTexts = Texts{
	Cancelled:     "cancelled",
	InvalidChoice: "invalid",
	MenuFooter:    "footer",
	Expired:       "expired",
}

func newTestDispatcher() (*Dispatcher, *MemoryStore) {
	store := NewMemoryStore(time.Minute)
	return NewDispatcher(store, testTexts), store
}

func TestDispatchWithoutConversation(t *testing.T) {
	d, _ := newTestDispatcher()
	d.Handle("a", func(tele.Context, *Conversation) error { t.Fatal("must not run"); return nil })

	handled, err := d.Dispatch(teletest.Private(1, "hello"))
	if handled || err != nil {
		t.Fatalf("Dispatch = %v, %v", handled, err)
	}
}

func TestDispatchUnknownStepFallsThrough(t *testing.T) {
	d, store := newTestDispatcher()
	_ = store.Start(context.Background(), 1, "orphan")
	handled, err := d.Dispatch(teletest.Private(1, "x"))
	if handled || err != nil {
		t.Fatalf("Dispatch = %v, %v", handled, err)
	}
}

func TestDispatchRunsHandlerWithInput(t *testing.T) {
	d, store := newTestDispatcher()
	var got string
	d.Handle("ask", func(c tele.Context, conv *Conversation) error {
		got = Input(c)
		return d.Advance(c, "done", Set("answer", got))
	})
	_ = store.Start(context.Background(), 1, "ask")

	handled, err := d.Dispatch(teletest.Private(1, "  42  "))
	if !handled || err != nil {
		t.Fatalf("Dispatch = %v, %v", handled, err)
	}
	if got != "42" {
		t.Fatalf("input = %q", got)
	}
	conv, _ := store.Get(context.Background(), 1)
	if conv.Step != "done" || conv.Value("answer") != "42" {
		t.Fatalf("unexpected record: %+v", conv)
	}
}

func TestDispatchCancel(t *testing.T) {
	d, store := newTestDispatcher()
	d.Handle("ask", func(tele.Context, *Conversation) error { t.Fatal("must not run"); return nil })
	_ = store.Start(context.Background(), 1, "ask")

	c := teletest.Private(1, "إلغاء")
	handled, err := d.Dispatch(c)
	if !handled || err != nil {
		t.Fatalf("Dispatch = %v, %v", handled, err)
	}
	if c.LastText() != "cancelled" {
		t.Fatalf("reply = %q", c.LastText())
	}
	if store.Len() != 0 {
		t.Fatalf("record survived cancel")
	}
}

func TestDispatchHandlerErrorEndsConversation(t *testing.T) {
	d, store := newTestDispatcher()
	boom := errors.New("boom")
	d.Handle("ask", func(tele.Context, *Conversation) error { return boom })
	_ = store.Start(context.Background(), 1, "ask")

	handled, err := d.Dispatch(teletest.Private(1, "x"))
	if !handled || !errors.Is(err, boom) {
		t.Fatalf("Dispatch = %v, %v", handled, err)
	}
	if store.Len() != 0 {
		t.Fatalf("record survived handler error")
	}
}

func TestCancelButtonWithoutConversation(t *testing.T) {
	d, _ := newTestDispatcher()
	c := teletest.Callback(1, 1, CancelAction, "cancel")
	if err := d.Cancel(c); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if c.LastText() != "expired" {
		t.Fatalf("reply = %q", c.LastText())
	}
}

func TestHandleTwicePanics(t *testing.T) {
	d, _ := newTestDispatcher()
	h := func(tele.Context, *Conversation) error { return nil }
	d.Handle("a", h)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	d.Handle("a", h)
}

func TestRenderMenu(t *testing.T) {
	got := RenderMenu("Pick:", []Option{{ID: 9, Label: "Law"}, {ID: 4, Label: "Arts"}}, "footer")
	want := "Pick:\n\n1. Law\n2. Arts\n\nfooter"
	if got != want {
		t.Fatalf("RenderMenu = %q", got)
	}
}

func TestMenuMarkup(t *testing.T) {
	m := MenuMarkup("pick_section", 7)
	if len(m.InlineKeyboard) != 3 {
		t.Fatalf("expected 2 number rows and a cancel row, got %d", len(m.InlineKeyboard))
	}
	last := m.InlineKeyboard[len(m.InlineKeyboard)-1]
	if len(last) != 1 || !strings.Contains(last[0].Data, CancelAction) {
		t.Fatalf("last row is not cancel: %+v", last)
	}
	if fmt.Sprint(m.InlineKeyboard[1][1].Text) != "7" {
		t.Fatalf("unexpected layout: %+v", m.InlineKeyboard)
	}
	if m.InlineKeyboard[0][0].Data != "pick_section:1" {
		t.Fatalf("pad not bound to its step: %+v", m.InlineKeyboard[0][0])
	}
}

func TestParsePick(t *testing.T) {
	cases := []struct {
		in     string
		step   Step
		choice string
		ok     bool
	}{
		{"view_section:2", "view_section", "2", true},
		{"a:b:10", "a:b", "10", true},
		{"3", "", "", false},
		{":3", "", "", false},
		{"view_section:", "", "", false},
	}
	for _, tc := range cases {
		step, choice, ok := ParsePick(tc.in)
		if step != tc.step || choice != tc.choice || ok != tc.ok {
			t.Fatalf("ParsePick(%q) = %q, %q, %v", tc.in, step, choice, ok)
		}
	}
}

func TestDispatchPickIgnoresStalePad(t *testing.T) {
	d, store := newTestDispatcher()
	var got []string
	record := func(c tele.Context, _ *Conversation) error {
		got = append(got, Input(c))
		return nil
	}
	d.Handle("pick_section", record)
	d.Handle("name_class", record)
	_ = store.Start(context.Background(), 1, "name_class")

	handled, err := d.DispatchPick(teletest.Callback(1, 1, PickAction, "pick_section:10"), "pick_section:10")
	if handled || err != nil {
		t.Fatalf("stale press = %v, %v", handled, err)
	}
	if len(got) != 0 {
		t.Fatalf("stale press reached a handler: %q", got)
	}

	handled, err = d.DispatchPick(teletest.Callback(1, 1, PickAction, "name_class:2"), "name_class:2")
	if !handled || err != nil || len(got) != 1 || got[0] != "2" {
		t.Fatalf("current press = %v, %v, %q", handled, err, got)
	}
}
