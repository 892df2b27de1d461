package flows

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m3rciful/lecturebot/core/telegram/teletest"
	"github.com/m3rciful/lecturebot/internal/catalog"
	"github.com/m3rciful/lecturebot/internal/texts"
)

func startManage(t *testing.T, h *harness) *teletest.Context {
	t.Helper()
	c := teletest.Group(7, -100, "!manage_courses")
	if err := h.flows.Manage.Start(c); err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.LastText() != texts.ManageMenu {
		t.Fatalf("menu not shown: %q", c.LastText())
	}
	return c
}

func TestManageAddClassUnderSection(t *testing.T) {
	h := newHarness(t, seed())
	c := startManage(t, h)

	menu := h.say(t, c, "2")
	if !strings.HasPrefix(menu.LastText(), texts.PickSection) {
		t.Fatalf("section menu not shown: %q", menu.LastText())
	}
	actions := h.say(t, c, "1")
	if !strings.Contains(actions.LastText(), "First") || h.step(t, 7) != StepManageAction {
		t.Fatalf("actions not shown: %q", actions.LastText())
	}
	prompt := h.say(t, c, "1")
	if prompt.LastText() != texts.ManageAskName("class") {
		t.Fatalf("unexpected prompt %q", prompt.LastText())
	}
	if got := h.say(t, c, "   ").LastText(); got != texts.ManageEmptyName {
		t.Fatalf("blank name accepted: %q", got)
	}
	done := h.say(t, c, "Second")
	if done.LastText() != texts.ManageAdded("class", "Second") {
		t.Fatalf("unexpected reply %q", done.LastText())
	}
	classes := h.svc.Cache().ClassesOf(1)
	if len(classes) != 2 || classes[1].Name != "Second" {
		t.Fatalf("class not added: %+v", classes)
	}
	if h.step(t, 7) != "" {
		t.Fatalf("conversation not ended")
	}
}

func TestManageDeleteSectionNeedsConfirmation(t *testing.T) {
	h := newHarness(t, seed())
	c := startManage(t, h)
	h.say(t, c, "1")
	h.say(t, c, "3")
	confirm := h.say(t, c, "1")
	if confirm.LastText() != texts.ManageConfirmDelete("section", "Law") {
		t.Fatalf("unexpected prompt %q", confirm.LastText())
	}
	done := h.say(t, c, "تأكيد")
	if done.LastText() != texts.ManageDeleted("section", "Law") {
		t.Fatalf("unexpected reply %q", done.LastText())
	}
	if got := h.svc.Cache().Counts(); got.Sections != 0 || got.Classes != 0 || got.Subjects != 0 {
		t.Fatalf("delete did not cascade: %+v", got)
	}
}

func TestManageDeleteAborted(t *testing.T) {
	h := newHarness(t, seed())
	c := startManage(t, h)
	h.say(t, c, "1")
	h.say(t, c, "3")
	h.say(t, c, "1")
	done := h.say(t, c, "ok")
	if done.LastText() != texts.ManageDeleteAborted {
		t.Fatalf("unexpected reply %q", done.LastText())
	}
	if _, ok := h.svc.Cache().Section(1); !ok {
		t.Fatalf("section deleted without confirmation")
	}
}

func TestManageRenameProfessor(t *testing.T) {
	h := newHarness(t, seed())
	c := startManage(t, h)
	h.say(t, c, "4")
	h.say(t, c, "2")
	if got := h.say(t, c, "7").LastText(); got != texts.InvalidChoice {
		t.Fatalf("out of range pick accepted: %q", got)
	}
	prompt := h.say(t, c, "1")
	if prompt.LastText() != texts.ManageAskNewName("professor", "Dr X") {
		t.Fatalf("unexpected prompt %q", prompt.LastText())
	}
	done := h.say(t, c, "Dr Y")
	if done.LastText() != texts.ManageRenamed("professor", "Dr X", "Dr Y") {
		t.Fatalf("unexpected reply %q", done.LastText())
	}
	if p, _ := h.svc.Cache().Professor(300); p.Name != "Dr Y" {
		t.Fatalf("rename not cached: %+v", p)
	}
}

func TestManageSubjectsWalkToClass(t *testing.T) {
	h := newHarness(t, seed())
	c := startManage(t, h)
	h.say(t, c, "5")
	h.say(t, c, "1")
	actions := h.say(t, c, "1")
	if !strings.Contains(actions.LastText(), "Civil") {
		t.Fatalf("subjects not listed: %q", actions.LastText())
	}
	conv, err := h.store.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if parent, _ := conv.Int(parentKey); parent != 10 || conv.Value(kindKey) != "subject" {
		t.Fatalf("unexpected record: %+v", conv.Values)
	}
}

func TestManageEmptyKindOnlyOffersAdd(t *testing.T) {
	h := newHarness(t, seed())
	h.svc.Cache().Delete(catalog.KindGroup, 200)
	c := startManage(t, h)
	h.say(t, c, "3")
	h.say(t, c, "1")
	actions := h.say(t, c, "1")
	if actions.LastText() != texts.ManageActions("group", nil) {
		t.Fatalf("unexpected actions %q", actions.LastText())
	}
	if got := h.say(t, c, "2").LastText(); got != texts.ManageNothingTo("group") {
		t.Fatalf("edit offered without items: %q", got)
	}
}

func TestManageInvalidKind(t *testing.T) {
	h := newHarness(t, seed())
	c := startManage(t, h)
	if got := h.say(t, c, "9").LastText(); got != texts.ManageInvalidKind {
		t.Fatalf("unexpected reply %q", got)
	}
	if h.step(t, 7) != StepManageKind {
		t.Fatalf("step changed on invalid input")
	}
}

func TestManageStoreFailureEndsConversation(t *testing.T) {
	h := newHarness(t, seed())
	c := startManage(t, h)
	h.say(t, c, "1")
	h.say(t, c, "1")
	h.repo.fail = errors.New("db down")
	handled, err := h.d.Dispatch(c.Next("Economics"))
	if !handled || err == nil {
		t.Fatalf("expected handled failure, got %v %v", handled, err)
	}
	if h.step(t, 7) != "" {
		t.Fatalf("conversation not ended after failure")
	}
	if h.svc.Cache().Counts().Sections != 1 {
		t.Fatalf("cache changed after failed write")
	}
}

func TestManageProfessorNameTaken(t *testing.T) {
	h := newHarness(t, seed())
	h.repo.taken = map[string]bool{"Dr X": true}
	c := startManage(t, h)
	h.say(t, c, "4")
	h.say(t, c, "1")

	if got := h.say(t, c, "Dr X").LastText(); got != texts.ManageNameExists {
		t.Fatalf("duplicate add: %q", got)
	}
	if h.step(t, 7) != StepManageAddName {
		t.Fatalf("conversation should stay on the name step")
	}
	if got := h.say(t, c, "Dr Y").LastText(); got != texts.ManageAdded("professor", "Dr Y") {
		t.Fatalf("unexpected reply %q", got)
	}

	c = startManage(t, h)
	h.say(t, c, "4")
	h.say(t, c, "2")
	h.say(t, c, "1")
	if got := h.say(t, c, "Dr X").LastText(); got != texts.ManageNameExists {
		t.Fatalf("duplicate rename: %q", got)
	}
	if h.step(t, 7) != StepManageEditName {
		t.Fatalf("conversation should stay on the rename step")
	}
	if p, _ := h.svc.Cache().Professor(300); p.Name != "Dr X" {
		t.Fatalf("cache renamed on failure: %+v", p)
	}
}
