package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	tg "github.com/m3rciful/lecturebot/core/telegram"
	"github.com/m3rciful/lecturebot/core/telegram/state"
	"github.com/m3rciful/lecturebot/core/telegram/teletest"
	"github.com/m3rciful/lecturebot/internal/access"
	"github.com/m3rciful/lecturebot/internal/texts"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{}
	cfg.Telegram.Token = "123:test"
	cfg.Telegram.AdminID = 1
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return cfg
}

func newApp(t *testing.T) *App {
	t.Helper()
	a, err := New(testConfig(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestNewRegistersCommandsAndCallbacks(t *testing.T) {
	a := newApp(t)
	for _, text := range []string{"!إعداد", "!ادارة_المقررات", "!اضافة_محاضرة", "!عرض_المحاضرات", "/search law", "!بحث قانون"} {
		if _, _, _, ok := a.Registry().LookupCommand(text); !ok {
			t.Fatalf("%q is not routed to a command", text)
		}
	}
	for _, key := range []string{state.PickAction, state.CancelAction} {
		if _, ok := a.Registry().GetCallback(key); !ok {
			t.Fatalf("callback %q not registered", key)
		}
	}
	if a.sweeper == nil {
		t.Fatalf("memory backend should schedule a sweeper")
	}
}

func TestTelegramRunOptions(t *testing.T) {
	a := newApp(t)
	opts, err := a.TelegramRunOptions()
	if err != nil {
		t.Fatalf("TelegramRunOptions: %v", err)
	}
	if opts.Bot == nil || opts.Registry != a.Registry() {
		t.Fatalf("run options do not carry the app's bot and registry")
	}
	names := map[string]bool{}
	for _, mw := range opts.Middlewares {
		names[mw.Name] = true
	}
	for _, want := range []string{"recover", "logger", "metrics", "busy"} {
		if !names[want] {
			t.Fatalf("middleware %q missing from %v", want, names)
		}
	}
	// one /name route per command plus text, document, callback and inline.
	if want := len(a.Registry().Commands()) + 4; len(opts.Routes) != want {
		t.Fatalf("routes = %d, want %d", len(opts.Routes), want)
	}
}

func TestPickWithoutConversationReportsExpired(t *testing.T) {
	a := newApp(t)
	c := teletest.Callback(7, -100, state.PickAction, "view_section:1")
	if err := a.pick(c); err != nil {
		t.Fatalf("pick: %v", err)
	}
	if c.LastText() != texts.Expired {
		t.Fatalf("reply = %q", c.LastText())
	}
}

func TestPickAndCancelDriveConversation(t *testing.T) {
	a := newApp(t)
	start := teletest.Private(7, "!عرض_المحاضرات")
	if err := a.flows.ViewLectures.Start(start); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// an empty catalog finishes the flow on start
	if _, err := a.store.Get(context.Background(), 7); !errors.Is(err, state.ErrNoConversation) {
		t.Fatalf("conversation should not be open on an empty catalog, err = %v", err)
	}

	if err := a.store.Start(context.Background(), 7, "view_section"); err != nil {
		t.Fatalf("Start store: %v", err)
	}
	pick := teletest.Callback(7, -100, state.PickAction, "view_section:1")
	if err := a.pick(pick); err != nil {
		t.Fatalf("pick: %v", err)
	}
	if pick.LastText() != texts.InvalidChoice {
		t.Fatalf("pick reply = %q", pick.LastText())
	}

	c := teletest.Callback(7, -100, state.CancelAction, "")
	if err := a.dispatcher.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if c.LastText() != texts.Cancelled {
		t.Fatalf("reply = %q", c.LastText())
	}
}

func TestPickFromOldMenuIsExpired(t *testing.T) {
	a := newApp(t)
	if err := a.store.Start(context.Background(), 7, "setup_class"); err != nil {
		t.Fatalf("Start store: %v", err)
	}
	c := teletest.Callback(7, -100, state.PickAction, "setup_action:2")
	if err := a.pick(c); err != nil {
		t.Fatalf("pick: %v", err)
	}
	if c.LastText() != texts.Expired {
		t.Fatalf("reply = %q", c.LastText())
	}
	conv, err := a.store.Get(context.Background(), 7)
	if err != nil || conv.Step != "setup_class" {
		t.Fatalf("conversation changed: %+v %v", conv, err)
	}
}

func TestRestartStopsRuntime(t *testing.T) {
	a := newApp(t)
	a.restart() // not running yet: no-op

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.onStart(ctx, tg.Runtime{Stop: cancel}); err != nil {
		t.Fatalf("onStart: %v", err)
	}
	a.restart()
	if ctx.Err() == nil {
		t.Fatalf("restart did not stop the runtime")
	}
	if err := a.onStop(context.Background(), tg.Runtime{}); err != nil {
		t.Fatalf("onStop: %v", err)
	}
}

func TestBoundaryClassifies(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{fmt.Errorf("cmd: %w", access.ErrDenied), "denied"},
		{fmt.Errorf("step: %w", context.DeadlineExceeded), "timeout"},
		{&net.OpError{Op: "dial", Err: errors.New("connection refused")}, "unavailable"},
		{errors.New("boom"), "internal"},
	}
	for _, tc := range cases {
		if kind, _ := classify(tc.err); kind != tc.kind {
			t.Errorf("classify(%v) = %q, want %q", tc.err, kind, tc.kind)
		}
	}
}

func TestBoundaryEndsConversationAndReplies(t *testing.T) {
	a := newApp(t)
	if err := a.store.Start(context.Background(), 7, "setup_section"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	c := teletest.Private(7, "x")
	if err := Boundary(a.dispatcher)(c, "fsm", errors.New("boom")); err != nil {
		t.Fatalf("boundary returned %v", err)
	}
	if _, err := a.store.Get(context.Background(), 7); !errors.Is(err, state.ErrNoConversation) {
		t.Fatalf("conversation survived the boundary")
	}
	if c.LastText() != texts.Failure {
		t.Fatalf("reply = %q", c.LastText())
	}
}
