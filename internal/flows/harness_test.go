package flows

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/lecturebot/core/telegram/state"
	"github.com/m3rciful/lecturebot/core/telegram/teletest"
	"github.com/m3rciful/lecturebot/internal/catalog"
	"github.com/m3rciful/lecturebot/internal/filehost"
)

type memRepo struct {
	nextID     int64
	fail       error
	failInsert error
	slowInsert bool
	taken      map[string]bool
	snap       catalog.Snapshot
	setups     []catalog.SetupDraft
	lectures   []catalog.Lecture
}

func (r *memRepo) id() int64 { r.nextID++; return r.nextID }

func (r *memRepo) LoadSnapshot(context.Context) (catalog.Snapshot, error) { return r.snap, r.fail }

func (r *memRepo) Create(_ context.Context, kind catalog.Kind, parentID int64, name string) (catalog.Item, error) {
	if r.fail != nil {
		return catalog.Item{}, r.fail
	}
	if r.taken[name] {
		return catalog.Item{}, catalog.ErrDuplicate
	}
	it := catalog.Item{Kind: kind, ID: r.id(), Name: name}
	if kind.Parent() != "" {
		it.ParentID = parentID
	}
	return it, nil
}

func (r *memRepo) Rename(_ context.Context, _ catalog.Kind, _ int64, name string) error {
	if r.taken[name] {
		return catalog.ErrDuplicate
	}
	return r.fail
}

func (r *memRepo) Delete(context.Context, catalog.Kind, int64) error { return r.fail }

func (r *memRepo) SaveSetup(_ context.Context, d catalog.SetupDraft) (catalog.SetupResult, error) {
	if r.fail != nil {
		return catalog.SetupResult{}, r.fail
	}
	r.setups = append(r.setups, d)
	res := catalog.SetupResult{Section: catalog.Section{ID: r.id(), Name: d.Section}}
	for _, c := range d.Classes {
		cl := catalog.Class{ID: r.id(), SectionID: res.Section.ID, Name: c.Name}
		res.Classes = append(res.Classes, cl)
		for _, s := range c.Subjects {
			res.Subjects = append(res.Subjects, catalog.Subject{ID: r.id(), ClassID: cl.ID, Name: s})
		}
		for _, g := range c.Groups {
			p := catalog.Professor{ID: r.id(), Name: g.Professor}
			res.Professors = append(res.Professors, p)
			res.Groups = append(res.Groups, catalog.Group{
				ID: r.id(), ClassID: cl.ID, Name: g.Name,
				ProfessorID: sql.NullInt64{Int64: p.ID, Valid: true},
			})
		}
	}
	return res, nil
}

func (r *memRepo) InsertLecture(ctx context.Context, l *catalog.Lecture) error {
	if r.slowInsert {
		<-ctx.Done()
		return ctx.Err()
	}
	if r.failInsert != nil {
		return r.failInsert
	}
	l.ID = r.id()
	l.UploadDate = time.Now()
	r.lectures = append(r.lectures, *l)
	return nil
}

func (r *memRepo) LecturesBySubject(_ context.Context, subjectID int64) ([]catalog.Lecture, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	var out []catalog.Lecture
	for _, l := range r.lectures {
		if l.SubjectID == subjectID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadDate.After(out[j].UploadDate) })
	return out, nil
}

func (r *memRepo) ListLectures(context.Context, int64, int) ([]catalog.LectureRow, error) {
	return nil, r.fail
}

func (r *memRepo) CountLectures(context.Context) (int, error) { return len(r.lectures), r.fail }

func (r *memRepo) AddDeveloper(context.Context, catalog.Developer) error { return r.fail }

type fakeHost struct {
	disabled bool
	fail     error
	uploads  []string
	removed  []string
}

func (h *fakeHost) Enabled() bool { return !h.disabled }

func (h *fakeHost) Upload(_ context.Context, path string, _ []byte, message string) (filehost.File, error) {
	if h.fail != nil {
		return filehost.File{}, h.fail
	}
	if !strings.HasSuffix(message, path) {
		return filehost.File{}, errors.New("commit message does not name the path")
	}
	h.uploads = append(h.uploads, path)
	return filehost.File{Path: path, SHA: "sha", URL: "https://cdn.test/" + path}, nil
}

func (h *fakeHost) Remove(ctx context.Context, f filehost.File, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.removed = append(h.removed, f.Path)
	return nil
}

// seed is one section with one class, subject, group and professor.
func seed() catalog.Snapshot {
	return catalog.Snapshot{
		Sections:   []catalog.Section{{ID: 1, Name: "Law"}},
		Classes:    []catalog.Class{{ID: 10, SectionID: 1, Name: "First"}},
		Subjects:   []catalog.Subject{{ID: 100, ClassID: 10, Name: "Civil"}},
		Groups:     []catalog.Group{{ID: 200, ClassID: 10, Name: "A", ProfessorID: sql.NullInt64{Int64: 300, Valid: true}}},
		Professors: []catalog.Professor{{ID: 300, Name: "Dr X"}},
	}
}

type harness struct {
	repo  *memRepo
	svc   *catalog.Service
	store *state.MemoryStore
	d     *state.Dispatcher
	bot   *teletest.Bot
	files *fakeHost
	flows *Set
}

func newHarness(t *testing.T, snap catalog.Snapshot) *harness {
	t.Helper()
	h := &harness{
		repo:  &memRepo{nextID: 1000, snap: snap},
		store: state.NewMemoryStore(time.Hour),
		bot:   &teletest.Bot{Files: map[string][]byte{}},
		files: &fakeHost{},
	}
	h.svc = catalog.NewService(h.repo, nil, time.Second)
	if err := h.svc.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h.d = state.NewDispatcher(h.store, DispatcherTexts())
	h.flows = Register(Deps{
		Dispatcher: h.d,
		Catalog:    h.svc,
		Bot:        h.bot,
		Files:      h.files,
	})
	return h
}

// say dispatches the next message of the conversation started by c and
// returns its context.
func (h *harness) say(t *testing.T, c *teletest.Context, text string) *teletest.Context {
	t.Helper()
	next := c.Next(text)
	h.dispatch(t, next)
	return next
}

func (h *harness) dispatch(t *testing.T, c *teletest.Context) {
	t.Helper()
	handled, err := h.d.Dispatch(c)
	if !handled {
		t.Fatalf("message %q not handled", c.Text())
	}
	if err != nil {
		t.Fatalf("dispatch %q: %v", c.Text(), err)
	}
}

func (h *harness) step(t *testing.T, user int64) state.Step {
	t.Helper()
	conv, err := h.store.Get(context.Background(), user)
	if errors.Is(err, state.ErrNoConversation) {
		return ""
	}
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	return conv.Step
}
