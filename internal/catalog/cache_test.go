package catalog

import (
	"database/sql"
	"testing"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Sections: []Section{{ID: 2, Name: "Sharia"}, {ID: 1, Name: "Law"}},
		Classes: []Class{
			{ID: 10, SectionID: 1, Name: "First"},
			{ID: 11, SectionID: 1, Name: "Second"},
			{ID: 20, SectionID: 2, Name: "First"},
		},
		Subjects: []Subject{
			{ID: 101, ClassID: 10, Name: "Civil Law"},
			{ID: 100, ClassID: 10, Name: "Criminal law"},
			{ID: 200, ClassID: 20, Name: "Fiqh"},
		},
		Groups: []Group{
			{ID: 1000, ClassID: 10, Name: "A", ProfessorID: sql.NullInt64{Int64: 7, Valid: true}},
			{ID: 2000, ClassID: 20, Name: "B", ProfessorID: sql.NullInt64{Int64: 7, Valid: true}},
		},
		Professors: []Professor{{ID: 7, Name: "Dr. Salem"}},
		Developers: []Developer{{UserID: 42, Name: "dev"}},
	}
}

func TestCacheOrderedQueries(t *testing.T) {
	c := NewCache()
	c.Replace(sampleSnapshot())

	secs := c.Sections()
	if len(secs) != 2 || secs[0].ID != 1 || secs[1].ID != 2 {
		t.Fatalf("sections not ordered by id: %+v", secs)
	}
	subs := c.SubjectsOf(10)
	if len(subs) != 2 || subs[0].ID != 100 {
		t.Fatalf("subjects: %+v", subs)
	}
	if items := c.Items(KindClass, 1); len(items) != 2 || items[1].Name != "Second" || items[1].ParentID != 1 {
		t.Fatalf("items: %+v", items)
	}
	if !c.IsDeveloper(42) || c.IsDeveloper(1) {
		t.Fatalf("developer set mismatch")
	}
}

func TestCacheDeleteCascades(t *testing.T) {
	c := NewCache()
	c.Replace(sampleSnapshot())

	c.Delete(KindSection, 1)
	if _, ok := c.Class(10); ok {
		t.Fatalf("class of deleted section survived")
	}
	if _, ok := c.Subject(101); ok {
		t.Fatalf("subject of deleted section survived")
	}
	if _, ok := c.Group(1000); ok {
		t.Fatalf("group of deleted section survived")
	}
	if _, ok := c.Subject(200); !ok {
		t.Fatalf("unrelated subject removed")
	}

	c.Delete(KindProfessor, 7)
	g, ok := c.Group(2000)
	if !ok || g.ProfessorID.Valid {
		t.Fatalf("professor reference not cleared: %+v", g)
	}
}

func TestCacheRenameAndPut(t *testing.T) {
	c := NewCache()
	c.Replace(sampleSnapshot())
	if !c.Rename(KindSubject, 200, "Usul") {
		t.Fatalf("rename reported missing")
	}
	if s, _ := c.Subject(200); s.Name != "Usul" {
		t.Fatalf("rename not applied: %+v", s)
	}
	if c.Rename(KindSubject, 999, "x") {
		t.Fatalf("rename of unknown id succeeded")
	}
	c.Put(Item{Kind: KindGroup, ID: 3000, ParentID: 20, Name: "C"})
	if gs := c.GroupsOf(20); len(gs) != 2 || gs[1].Name != "C" {
		t.Fatalf("put group: %+v", gs)
	}
}

func TestSearchSubjects(t *testing.T) {
	c := NewCache()
	c.Replace(sampleSnapshot())

	hits := c.SearchSubjects("  LAW ")
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %+v", hits)
	}
	if hits[0].ID != 100 || hits[0].SectionName != "Law" || hits[0].ClassName != "First" {
		t.Fatalf("unexpected first hit: %+v", hits[0])
	}
	if hits := c.SearchSubjects(""); hits != nil {
		t.Fatalf("empty term should match nothing")
	}
}

func TestApplySetupAndCounts(t *testing.T) {
	c := NewCache()
	c.ApplySetup(SetupResult{
		Section:    Section{ID: 5, Name: "Arts"},
		Classes:    []Class{{ID: 50, SectionID: 5, Name: "First"}},
		Subjects:   []Subject{{ID: 500, ClassID: 50, Name: "Poetry"}},
		Groups:     []Group{{ID: 5000, ClassID: 50, Name: "A", ProfessorID: sql.NullInt64{Int64: 9, Valid: true}}},
		Professors: []Professor{{ID: 9, Name: "Dr. Huda"}},
	})
	want := Counts{Sections: 1, Classes: 1, Subjects: 1, Groups: 1, Professors: 1}
	if got := c.Counts(); got != want {
		t.Fatalf("counts = %+v", got)
	}
}
