package flows

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/lecturebot/core/telegram/teletest"
	"github.com/m3rciful/lecturebot/internal/catalog"
	"github.com/m3rciful/lecturebot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

func startAddLecture(t *testing.T, h *harness) *teletest.Context {
	t.Helper()
	c := teletest.Group(7, -100, "!add_lecture")
	if err := h.flows.AddLecture.Start(c); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, in := range []string{"1", "1", "1", "1"} {
		h.say(t, c, in)
	}
	if got := h.say(t, c, "1").LastText(); got != texts.LectureAskDetails {
		t.Fatalf("details not requested: %q", got)
	}
	if got := h.say(t, c, "Lecture 1: intro").LastText(); got != texts.LectureAskFile {
		t.Fatalf("file not requested: %q", got)
	}
	return c
}

func pdf(c *teletest.Context, name, mime string) *teletest.Context {
	return c.Next("").WithDocument(name, mime, 4)
}

func TestAddLecturePublishes(t *testing.T) {
	h := newHarness(t, seed())
	h.bot.Files["file-l.pdf"] = []byte("%PDF")
	c := startAddLecture(t, h)

	if got := h.say(t, c, "hello").LastText(); got != texts.LectureNotPDF {
		t.Fatalf("text accepted as file: %q", got)
	}
	png := pdf(c, "l.png", "image/png")
	h.dispatch(t, png)
	if png.LastText() != texts.LectureNotPDF || h.step(t, 7) != StepLectureFile {
		t.Fatalf("non-pdf accepted: %q", png.LastText())
	}

	doc := pdf(c, "l.pdf", "application/pdf")
	h.dispatch(t, doc)
	if doc.LastText() != texts.LectureAdded {
		t.Fatalf("unexpected reply %q", doc.LastText())
	}
	wantPath := "lectures/Law/First/Civil/Lecture 1- intro - A.pdf"
	if len(h.files.uploads) != 1 || h.files.uploads[0] != wantPath {
		t.Fatalf("unexpected uploads %q", h.files.uploads)
	}
	if len(h.repo.lectures) != 1 {
		t.Fatalf("lecture not recorded")
	}
	l := h.repo.lectures[0]
	if l.SubjectID != 100 || l.GroupID.Int64 != 200 || l.ProfessorID.Int64 != 300 || l.UploaderID != 7 {
		t.Fatalf("unexpected lecture row %+v", l)
	}
	if l.FileName != wantPath || !strings.HasSuffix(l.FileURL, wantPath) {
		t.Fatalf("unexpected file fields %+v", l)
	}
	if h.step(t, 7) != "" {
		t.Fatalf("conversation not ended")
	}
}

func TestAddLectureRevertsUploadWhenInsertFails(t *testing.T) {
	h := newHarness(t, seed())
	h.bot.Files["file-l.pdf"] = []byte("%PDF")
	c := startAddLecture(t, h)
	h.repo.failInsert = errors.New("insert failed")

	handled, err := h.d.Dispatch(pdf(c, "l.pdf", "application/pdf"))
	if !handled || err == nil {
		t.Fatalf("expected handled failure, got %v %v", handled, err)
	}
	if len(h.files.uploads) != 1 || len(h.files.removed) != 1 || h.files.removed[0] != h.files.uploads[0] {
		t.Fatalf("upload not reverted: up=%q rm=%q", h.files.uploads, h.files.removed)
	}
	if h.step(t, 7) != "" {
		t.Fatalf("conversation not ended")
	}
}

func TestAddLectureRevertsUploadAfterInsertTimeout(t *testing.T) {
	h := newHarness(t, seed())
	h.bot.Files["file-l.pdf"] = []byte("%PDF")
	h.flows.AddLecture.timeout = 50 * time.Millisecond
	c := startAddLecture(t, h)
	h.repo.slowInsert = true

	_, err := h.d.Dispatch(pdf(c, "l.pdf", "application/pdf"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if len(h.files.uploads) != 1 || len(h.files.removed) != 1 || h.files.removed[0] != h.files.uploads[0] {
		t.Fatalf("upload left behind: up=%q rm=%q", h.files.uploads, h.files.removed)
	}
}

func TestAddLectureHostDisabled(t *testing.T) {
	h := newHarness(t, seed())
	h.files.disabled = true
	c := startAddLecture(t, h)
	doc := pdf(c, "l.pdf", "application/pdf")
	h.dispatch(t, doc)
	if doc.LastText() != texts.HostDisabled || h.step(t, 7) != "" {
		t.Fatalf("unexpected reply %q", doc.LastText())
	}
}

func TestAddLectureNoProfessors(t *testing.T) {
	snap := seed()
	snap.Professors = nil
	h := newHarness(t, snap)
	c := teletest.Group(7, -100, "!add_lecture")
	_ = h.flows.AddLecture.Start(c)
	for _, in := range []string{"1", "1", "1"} {
		h.say(t, c, in)
	}
	if got := h.say(t, c, "1").LastText(); got != texts.NoProfessors {
		t.Fatalf("unexpected reply %q", got)
	}
	if h.step(t, 7) != "" {
		t.Fatalf("conversation not ended")
	}
}

func TestViewLecturesDeliversToPrivateChat(t *testing.T) {
	h := newHarness(t, seed())
	now := time.Now()
	h.repo.lectures = []catalog.Lecture{
		{ID: 1, SubjectID: 100, FileName: "lectures/Law/First/Civil/old - A.pdf", FileURL: "https://cdn.test/old.pdf", UploadDate: now.Add(-time.Hour)},
		{ID: 2, SubjectID: 100, FileName: "lectures/Law/First/Civil/new - A.pdf", FileURL: "https://cdn.test/new.pdf", UploadDate: now},
	}
	c := teletest.Group(7, -100, "!view_lectures")
	if err := h.flows.ViewLectures.Start(c); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.say(t, c, "1")
	h.say(t, c, "1")
	list := h.say(t, c, "1")
	if !strings.Contains(list.LastText(), "1. new - A.pdf") {
		t.Fatalf("newest lecture not first: %q", list.LastText())
	}

	done := h.say(t, c, "1")
	if done.LastText() != texts.LectureSentDM {
		t.Fatalf("unexpected reply %q", done.LastText())
	}
	sent := h.bot.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected one private message, got %d", len(sent))
	}
	doc, ok := sent[0].What.(*tele.Document)
	if !ok || doc.FileURL != "https://cdn.test/new.pdf" || doc.FileName != "new - A.pdf" {
		t.Fatalf("unexpected document %+v", sent[0].What)
	}
	if u, ok := sent[0].To.(*tele.User); !ok || u.ID != 7 {
		t.Fatalf("document not sent to the user: %+v", sent[0].To)
	}
	if h.step(t, 7) != "" {
		t.Fatalf("conversation not ended")
	}
}

func TestViewLecturesNoLectures(t *testing.T) {
	h := newHarness(t, seed())
	c := teletest.Private(7, "!view_lectures")
	_ = h.flows.ViewLectures.Start(c)
	h.say(t, c, "1")
	h.say(t, c, "1")
	if got := h.say(t, c, "1").LastText(); got != texts.NoLecturesFor("Civil") {
		t.Fatalf("unexpected reply %q", got)
	}
	if h.step(t, 7) != "" {
		t.Fatalf("conversation not ended")
	}
}

func TestViewLecturesDeliveryFailure(t *testing.T) {
	h := newHarness(t, seed())
	h.repo.lectures = []catalog.Lecture{{ID: 1, SubjectID: 100, FileName: "a.pdf", FileURL: "u", UploadDate: time.Now()}}
	h.bot.SendErr = errors.New("forbidden: bot can't initiate conversation")
	c := teletest.Group(7, -100, "!view_lectures")
	_ = h.flows.ViewLectures.Start(c)
	for _, in := range []string{"1", "1", "1"} {
		h.say(t, c, in)
	}
	if got := h.say(t, c, "1").LastText(); got != texts.LectureDMFailed {
		t.Fatalf("unexpected reply %q", got)
	}
	if h.step(t, 7) != "" {
		t.Fatalf("conversation not ended")
	}
}

func TestViewLecturesChoiceUsesMenuAsShown(t *testing.T) {
	snap := seed()
	snap.Sections = []catalog.Section{{ID: 5, Name: "Law"}}
	snap.Classes[0].SectionID = 5
	h := newHarness(t, snap)
	c := teletest.Private(7, "!view_lectures")
	if err := h.flows.ViewLectures.Start(c); err != nil {
		t.Fatalf("start: %v", err)
	}

	// A section sorting before Law appears after the menu was sent.
	h.svc.Cache().Put(catalog.Item{Kind: catalog.KindSection, ID: 2, Name: "Medicine"})
	if got := h.svc.Cache().Sections(); len(got) != 2 || got[0].Name != "Medicine" {
		t.Fatalf("cache not updated: %+v", got)
	}

	h.say(t, c, "1")
	conv, err := h.store.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if conv.Step != StepViewClass || conv.Value("section_id") != "5" || conv.Value("section_name") != "Law" {
		t.Fatalf("choice resolved against the live cache: %+v", conv.Values)
	}
}
