// Package catalog holds the academic hierarchy: sections contain classes,
// classes contain subjects and groups, groups may be taught by a professor,
// and lectures are filed under a subject.
//
// PostgreSQL is the source of truth. A read-optimised Cache mirrors it for
// menus and search, and Service keeps the two in step.
package catalog

import (
	"database/sql"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when an entity id is unknown.
	ErrNotFound = errors.New("catalog: not found")
	// ErrParentNotFound is returned when creating a child of a missing parent.
	ErrParentNotFound = errors.New("catalog: parent not found")
	// ErrEmptyName is returned for blank names.
	ErrEmptyName = errors.New("catalog: empty name")
	// ErrDuplicate is returned when a name must be unique and is taken.
	ErrDuplicate = errors.New("catalog: name already exists")
)

type Section struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Class struct {
	ID        int64  `db:"id"`
	SectionID int64  `db:"section_id"`
	Name      string `db:"name"`
}

type Subject struct {
	ID      int64  `db:"id"`
	ClassID int64  `db:"class_id"`
	Name    string `db:"name"`
}

type Group struct {
	ID          int64         `db:"id"`
	ClassID     int64         `db:"class_id"`
	Name        string        `db:"name"`
	ProfessorID sql.NullInt64 `db:"professor_id"`
}

type Professor struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Lecture is one uploaded PDF.
type Lecture struct {
	ID          int64         `db:"id"`
	SubjectID   int64         `db:"subject_id"`
	ProfessorID sql.NullInt64 `db:"professor_id"`
	GroupID     sql.NullInt64 `db:"group_id"`
	FileName    string        `db:"file_name"`
	FileURL     string        `db:"file_url"`
	UploaderID  int64         `db:"uploader_id"`
	UploadDate  time.Time     `db:"upload_date"`
}

// LectureRow is a lecture with the names of everything it refers to.
type LectureRow struct {
	Lecture
	SectionName   string         `db:"section_name"`
	ClassName     string         `db:"class_name"`
	SubjectName   string         `db:"subject_name"`
	GroupName     sql.NullString `db:"group_name"`
	ProfessorName sql.NullString `db:"professor_name"`
}

type Developer struct {
	UserID int64  `db:"userid"`
	Name   string `db:"name"`
}

// Snapshot is the full catalog as loaded at startup.
type Snapshot struct {
	Sections   []Section
	Classes    []Class
	Subjects   []Subject
	Groups     []Group
	Professors []Professor
	Developers []Developer
}

// Counts summarises the catalog size.
type Counts struct {
	Sections   int
	Classes    int
	Subjects   int
	Groups     int
	Professors int
	Developers int
}

// SubjectHit is a search result with its ancestors resolved.
type SubjectHit struct {
	Subject
	ClassName   string
	SectionName string
}

// SetupDraft is a whole section sub-tree collected by the setup flow.
type SetupDraft struct {
	Section string       `json:"section"`
	Classes []SetupClass `json:"classes"`
}

type SetupClass struct {
	Name     string       `json:"name"`
	Subjects []string     `json:"subjects"`
	Groups   []SetupGroup `json:"groups"`
}

type SetupGroup struct {
	Name      string `json:"name"`
	Professor string `json:"professor"`
}

// SetupResult lists the rows written for a SetupDraft. Professors holds every
// professor the draft referenced, whether created or found.
type SetupResult struct {
	Section    Section
	Classes    []Class
	Subjects   []Subject
	Groups     []Group
	Professors []Professor
}
