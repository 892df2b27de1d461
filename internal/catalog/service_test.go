package catalog

import (
	"context"
	"errors"
	"testing"
)

type fakeRepo struct {
	nextID int64
	fail   error
	snap   Snapshot
	added  []Developer
	setups []SetupDraft
	lects  []*Lecture
}

func (r *fakeRepo) id() int64 { r.nextID++; return r.nextID }

func (r *fakeRepo) LoadSnapshot(context.Context) (Snapshot, error) { return r.snap, r.fail }

func (r *fakeRepo) Create(_ context.Context, kind Kind, parentID int64, name string) (Item, error) {
	if r.fail != nil {
		return Item{}, r.fail
	}
	it := Item{Kind: kind, ID: r.id(), Name: name}
	if kind.Parent() != "" {
		it.ParentID = parentID
	}
	return it, nil
}

func (r *fakeRepo) Rename(context.Context, Kind, int64, string) error { return r.fail }
func (r *fakeRepo) Delete(context.Context, Kind, int64) error         { return r.fail }

func (r *fakeRepo) SaveSetup(_ context.Context, d SetupDraft) (SetupResult, error) {
	if r.fail != nil {
		return SetupResult{}, r.fail
	}
	r.setups = append(r.setups, d)
	res := SetupResult{Section: Section{ID: r.id(), Name: d.Section}}
	for _, c := range d.Classes {
		res.Classes = append(res.Classes, Class{ID: r.id(), SectionID: res.Section.ID, Name: c.Name})
	}
	return res, nil
}

func (r *fakeRepo) InsertLecture(_ context.Context, l *Lecture) error {
	if r.fail != nil {
		return r.fail
	}
	l.ID = r.id()
	r.lects = append(r.lects, l)
	return nil
}

func (r *fakeRepo) LecturesBySubject(context.Context, int64) ([]Lecture, error) { return nil, r.fail }
func (r *fakeRepo) ListLectures(context.Context, int64, int) ([]LectureRow, error) {
	return nil, r.fail
}
func (r *fakeRepo) CountLectures(context.Context) (int, error) { return len(r.lects), r.fail }

func (r *fakeRepo) AddDeveloper(_ context.Context, d Developer) error {
	if r.fail != nil {
		return r.fail
	}
	r.added = append(r.added, d)
	return nil
}

func TestServiceSeed(t *testing.T) {
	repo := &fakeRepo{snap: sampleSnapshot()}
	svc := NewService(repo, nil, 0)
	if err := svc.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if svc.Cache().Counts().Sections != 2 {
		t.Fatalf("cache not warmed")
	}
}

func TestServiceCreateChecksParent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeRepo{}, nil, 0)

	if _, err := svc.Create(ctx, KindClass, 99, "First"); !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("expected ErrParentNotFound, got %v", err)
	}
	sec, err := svc.Create(ctx, KindSection, 0, " Law ")
	if err != nil {
		t.Fatalf("create section: %v", err)
	}
	if sec.Name != "Law" {
		t.Fatalf("name not trimmed: %q", sec.Name)
	}
	cl, err := svc.Create(ctx, KindClass, sec.ID, "First")
	if err != nil {
		t.Fatalf("create class: %v", err)
	}
	if got := svc.Cache().ClassesOf(sec.ID); len(got) != 1 || got[0].ID != cl.ID {
		t.Fatalf("class not cached: %+v", got)
	}
	if _, err := svc.Create(ctx, KindSection, 0, "  "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestServiceFailedWriteLeavesCache(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{snap: sampleSnapshot()}
	svc := NewService(repo, nil, 0)
	_ = svc.Seed(ctx)

	repo.fail = errors.New("db down")
	if err := svc.Rename(ctx, KindSection, 1, "New"); err == nil {
		t.Fatalf("expected error")
	}
	if s, _ := svc.Cache().Section(1); s.Name != "Law" {
		t.Fatalf("cache changed on failed rename: %+v", s)
	}
	if err := svc.Delete(ctx, KindSection, 1); err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := svc.Cache().Section(1); !ok {
		t.Fatalf("cache changed on failed delete")
	}
	if err := svc.AddDeveloper(ctx, Developer{UserID: 5}); err == nil || svc.IsDeveloper(5) {
		t.Fatalf("developer cached after failed write")
	}
}

func TestServiceDeleteUnknown(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, 0)
	if err := svc.Delete(context.Background(), KindGroup, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceSaveSetup(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, 0)
	res, err := svc.SaveSetup(context.Background(), SetupDraft{
		Section: "Arts",
		Classes: []SetupClass{{Name: "First"}, {Name: "Second"}},
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if got := svc.Cache().ClassesOf(res.Section.ID); len(got) != 2 {
		t.Fatalf("setup not mirrored: %+v", got)
	}
}

func TestServiceAddLectureNeedsSubject(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{snap: sampleSnapshot()}
	svc := NewService(repo, nil, 0)
	_ = svc.Seed(ctx)

	if err := svc.AddLecture(ctx, &Lecture{SubjectID: 999}); !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("expected ErrParentNotFound, got %v", err)
	}
	l := &Lecture{SubjectID: 100, FileName: "a.pdf"}
	if err := svc.AddLecture(ctx, l); err != nil || l.ID == 0 {
		t.Fatalf("add lecture: %v %+v", err, l)
	}
}
