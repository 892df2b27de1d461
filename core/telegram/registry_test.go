package telegram

import (
	"testing"

	"github.com/m3rciful/lecturebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in, name, args string
		ok             bool
	}{
		{"!بحث قانون مدني", "بحث", "قانون مدني", true},
		{"/search@lecture_bot  law ", "search", "law", true},
		{"!سؤال\nما هو العقد؟", "سؤال", "ما هو العقد؟", true},
		{"!setup", "setup", "", true},
		{"hello", "", "", false},
		{"!", "", "", false},
	}
	for _, tc := range cases {
		name, args, ok := ParseCommand(tc.in)
		if ok != tc.ok || name != tc.name || args != tc.args {
			t.Errorf("ParseCommand(%q) = %q, %q, %v", tc.in, name, args, ok)
		}
	}
}

func TestLookupCommandAliases(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCommand("setup", commands.Command{Handler: noop, Description: "setup", Aliases: []string{"!إعداد"}}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, text := range []string{"!setup", "/setup", "!إعداد", "!SETUP"} {
		name, _, _, ok := reg.LookupCommand(text)
		if !ok || name != "setup" {
			t.Errorf("LookupCommand(%q) = %q, %v", text, name, ok)
		}
	}
	if _, _, _, ok := reg.LookupCommand("إعداد"); ok {
		t.Fatalf("text without prefix must not match")
	}
}

func TestRegisterCommandRejectsConflicts(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCommand("search", commands.Command{Handler: noop, Description: "d", Aliases: []string{"بحث"}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCommand("find", commands.Command{Handler: noop, Description: "d", Aliases: []string{"!بحث"}}); err == nil {
		t.Fatalf("expected alias conflict")
	}
	if err := reg.RegisterCommand("بحث2", commands.Command{Handler: noop, Description: "d"}); err == nil {
		t.Fatalf("expected invalid telegram name")
	}
}

func TestListCommandsHidesPrivileged(t *testing.T) {
	reg := NewRegistry()
	_ = reg.RegisterCommand("help", commands.Command{Handler: noop, Description: "help"})
	_ = reg.RegisterCommand("stats", commands.Command{Handler: noop, Description: "stats", Role: commands.RoleOwner})

	visible := reg.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "help" {
		t.Fatalf("visible = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 2 {
		t.Fatalf("all = %+v", all)
	}
}
