package catalog

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Cache is the in-memory mirror of the catalog. Every list it returns is a
// fresh slice ordered by id.
type Cache struct {
	mu         sync.RWMutex
	sections   map[int64]Section
	classes    map[int64]Class
	subjects   map[int64]Subject
	groups     map[int64]Group
	professors map[int64]Professor
	developers map[int64]Developer
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	c := &Cache{}
	c.Replace(Snapshot{})
	return c
}

// Replace swaps the whole content for snap.
func (c *Cache) Replace(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sections = index(snap.Sections, func(s Section) int64 { return s.ID })
	c.classes = index(snap.Classes, func(s Class) int64 { return s.ID })
	c.subjects = index(snap.Subjects, func(s Subject) int64 { return s.ID })
	c.groups = index(snap.Groups, func(s Group) int64 { return s.ID })
	c.professors = index(snap.Professors, func(s Professor) int64 { return s.ID })
	c.developers = index(snap.Developers, func(s Developer) int64 { return s.UserID })
}

func index[T any](items []T, id func(T) int64) map[int64]T {
	m := make(map[int64]T, len(items))
	for _, it := range items {
		m[id(it)] = it
	}
	return m
}

func sorted[T any](m map[int64]T, keep func(T) bool) []T {
	ids := slices.Sorted(maps.Keys(m))
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if v := m[id]; keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (c *Cache) Sections() []Section {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sorted(c.sections, nil)
}

func (c *Cache) ClassesOf(sectionID int64) []Class {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sorted(c.classes, func(v Class) bool { return v.SectionID == sectionID })
}

func (c *Cache) SubjectsOf(classID int64) []Subject {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sorted(c.subjects, func(v Subject) bool { return v.ClassID == classID })
}

func (c *Cache) GroupsOf(classID int64) []Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sorted(c.groups, func(v Group) bool { return v.ClassID == classID })
}

func (c *Cache) Professors() []Professor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sorted(c.professors, nil)
}

func (c *Cache) Section(id int64) (Section, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.sections[id]
	return v, ok
}

func (c *Cache) Class(id int64) (Class, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.classes[id]
	return v, ok
}

func (c *Cache) Subject(id int64) (Subject, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.subjects[id]
	return v, ok
}

func (c *Cache) Group(id int64) (Group, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.groups[id]
	return v, ok
}

func (c *Cache) Professor(id int64) (Professor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.professors[id]
	return v, ok
}

// Items lists the entities of kind under parentID. parentID is ignored for
// top-level kinds.
func (c *Cache) Items(kind Kind, parentID int64) []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Item
	switch kind {
	case KindSection:
		for _, v := range sorted(c.sections, nil) {
			out = append(out, Item{Kind: kind, ID: v.ID, Name: v.Name})
		}
	case KindProfessor:
		for _, v := range sorted(c.professors, nil) {
			out = append(out, Item{Kind: kind, ID: v.ID, Name: v.Name})
		}
	case KindClass:
		for _, v := range sorted(c.classes, func(v Class) bool { return v.SectionID == parentID }) {
			out = append(out, Item{Kind: kind, ID: v.ID, ParentID: v.SectionID, Name: v.Name})
		}
	case KindSubject:
		for _, v := range sorted(c.subjects, func(v Subject) bool { return v.ClassID == parentID }) {
			out = append(out, Item{Kind: kind, ID: v.ID, ParentID: v.ClassID, Name: v.Name})
		}
	case KindGroup:
		for _, v := range sorted(c.groups, func(v Group) bool { return v.ClassID == parentID }) {
			out = append(out, Item{Kind: kind, ID: v.ID, ParentID: v.ClassID, Name: v.Name})
		}
	}
	return out
}

// Has reports whether an entity of kind with id exists.
func (c *Cache) Has(kind Kind, id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch kind {
	case KindSection:
		_, ok := c.sections[id]
		return ok
	case KindClass:
		_, ok := c.classes[id]
		return ok
	case KindSubject:
		_, ok := c.subjects[id]
		return ok
	case KindGroup:
		_, ok := c.groups[id]
		return ok
	case KindProfessor:
		_, ok := c.professors[id]
		return ok
	}
	return false
}

// Put inserts or replaces an entity. A group put this way has no professor.
func (c *Cache) Put(it Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch it.Kind {
	case KindSection:
		c.sections[it.ID] = Section{ID: it.ID, Name: it.Name}
	case KindClass:
		c.classes[it.ID] = Class{ID: it.ID, SectionID: it.ParentID, Name: it.Name}
	case KindSubject:
		c.subjects[it.ID] = Subject{ID: it.ID, ClassID: it.ParentID, Name: it.Name}
	case KindGroup:
		c.groups[it.ID] = Group{ID: it.ID, ClassID: it.ParentID, Name: it.Name}
	case KindProfessor:
		c.professors[it.ID] = Professor{ID: it.ID, Name: it.Name}
	}
}

// Rename changes the name of an entity and reports whether it existed.
func (c *Cache) Rename(kind Kind, id int64, name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch kind {
	case KindSection:
		return rename(c.sections, id, func(v *Section) { v.Name = name })
	case KindClass:
		return rename(c.classes, id, func(v *Class) { v.Name = name })
	case KindSubject:
		return rename(c.subjects, id, func(v *Subject) { v.Name = name })
	case KindGroup:
		return rename(c.groups, id, func(v *Group) { v.Name = name })
	case KindProfessor:
		return rename(c.professors, id, func(v *Professor) { v.Name = name })
	}
	return false
}

func rename[T any](m map[int64]T, id int64, set func(*T)) bool {
	v, ok := m[id]
	if !ok {
		return false
	}
	set(&v)
	m[id] = v
	return true
}

// Delete removes an entity together with everything the database cascades
// to: a section takes its classes, a class takes its subjects and groups,
// and a removed professor is unlinked from groups.
func (c *Cache) Delete(kind Kind, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch kind {
	case KindSection:
		delete(c.sections, id)
		for cid, cl := range c.classes {
			if cl.SectionID == id {
				c.deleteClass(cid)
			}
		}
	case KindClass:
		c.deleteClass(id)
	case KindSubject:
		delete(c.subjects, id)
	case KindGroup:
		delete(c.groups, id)
	case KindProfessor:
		delete(c.professors, id)
		for gid, g := range c.groups {
			if g.ProfessorID.Valid && g.ProfessorID.Int64 == id {
				g.ProfessorID.Valid, g.ProfessorID.Int64 = false, 0
				c.groups[gid] = g
			}
		}
	}
}

func (c *Cache) deleteClass(id int64) {
	delete(c.classes, id)
	maps.DeleteFunc(c.subjects, func(_ int64, s Subject) bool { return s.ClassID == id })
	maps.DeleteFunc(c.groups, func(_ int64, g Group) bool { return g.ClassID == id })
}

// ApplySetup mirrors the rows written by a setup transaction.
func (c *Cache) ApplySetup(res SetupResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sections[res.Section.ID] = res.Section
	for _, v := range res.Classes {
		c.classes[v.ID] = v
	}
	for _, v := range res.Subjects {
		c.subjects[v.ID] = v
	}
	for _, v := range res.Professors {
		c.professors[v.ID] = v
	}
	for _, v := range res.Groups {
		c.groups[v.ID] = v
	}
}

// Counts returns the number of entities per kind.
func (c *Cache) Counts() Counts {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Counts{
		Sections:   len(c.sections),
		Classes:    len(c.classes),
		Subjects:   len(c.subjects),
		Groups:     len(c.groups),
		Professors: len(c.professors),
		Developers: len(c.developers),
	}
}

// SearchSubjects returns subjects whose name contains term, ignoring case.
func (c *Cache) SearchSubjects(term string) []SubjectHit {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(term))
	if needle == "" {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var hits []SubjectHit
	for _, s := range sorted(c.subjects, nil) {
		if !strings.Contains(fold.String(s.Name), needle) {
			continue
		}
		hit := SubjectHit{Subject: s}
		if cl, ok := c.classes[s.ClassID]; ok {
			hit.ClassName = cl.Name
			hit.SectionName = c.sections[cl.SectionID].Name
		}
		hits = append(hits, hit)
	}
	return hits
}

func (c *Cache) IsDeveloper(userID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.developers[userID]
	return ok
}

func (c *Cache) AddDeveloper(d Developer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.developers[d.UserID] = d
}

// Developers lists developers ordered by user id.
func (c *Cache) Developers() []Developer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sorted(c.developers, nil)
}
