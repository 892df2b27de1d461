package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint.
const uniqueViolation = "23505"

// Store reads and writes the catalog tables.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open connection.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// LoadSnapshot reads the whole catalog.
func (s *Store) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	queries := []struct {
		dst   any
		query string
	}{
		{&snap.Sections, `SELECT id, name FROM sections ORDER BY id`},
		{&snap.Classes, `SELECT id, section_id, name FROM classes ORDER BY id`},
		{&snap.Subjects, `SELECT id, class_id, name FROM subjects ORDER BY id`},
		{&snap.Groups, `SELECT id, class_id, name, professor_id FROM course_groups ORDER BY id`},
		{&snap.Professors, `SELECT id, name FROM professors ORDER BY id`},
		{&snap.Developers, `SELECT userid, name FROM developers ORDER BY userid`},
	}
	for _, q := range queries {
		if err := s.db.SelectContext(ctx, q.dst, q.query); err != nil {
			return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
		}
	}
	return snap, nil
}

// Create inserts an entity and returns it with its new id.
func (s *Store) Create(ctx context.Context, kind Kind, parentID int64, name string) (Item, error) {
	if !kind.Valid() {
		return Item{}, fmt.Errorf("create: unknown kind %q", kind)
	}
	it := Item{Kind: kind, Name: name}
	var err error
	if col := kind.parentColumn(); col != "" {
		it.ParentID = parentID
		q := fmt.Sprintf(`INSERT INTO %s (name, %s) VALUES ($1, $2) RETURNING id`, kind.table(), col)
		err = s.db.QueryRowxContext(ctx, q, name, parentID).Scan(&it.ID)
	} else {
		q := fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) RETURNING id`, kind.table())
		err = s.db.QueryRowxContext(ctx, q, name).Scan(&it.ID)
	}
	if err != nil {
		return Item{}, fmt.Errorf("create %s: %w", kind, mapUnique(err))
	}
	return it, nil
}

// Rename updates an entity name.
func (s *Store) Rename(ctx context.Context, kind Kind, id int64, name string) error {
	if !kind.Valid() {
		return fmt.Errorf("rename: unknown kind %q", kind)
	}
	q := fmt.Sprintf(`UPDATE %s SET name = $1 WHERE id = $2`, kind.table())
	res, err := s.db.ExecContext(ctx, q, name, id)
	if err != nil {
		return fmt.Errorf("rename %s: %w", kind, mapUnique(err))
	}
	return expectRow(res, kind)
}

// Delete removes an entity; foreign keys cascade to its children.
func (s *Store) Delete(ctx context.Context, kind Kind, id int64) error {
	if !kind.Valid() {
		return fmt.Errorf("delete: unknown kind %q", kind)
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, kind.table())
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return expectRow(res, kind)
}

// mapUnique turns a unique violation into ErrDuplicate.
func mapUnique(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
	return err
}

func expectRow(res sql.Result, kind Kind) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", kind, ErrNotFound)
	}
	return nil
}

// SaveSetup writes a section sub-tree in one transaction. Professors are
// matched by exact name and created when missing.
func (s *Store) SaveSetup(ctx context.Context, draft SetupDraft) (res SetupResult, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return SetupResult{}, fmt.Errorf("setup begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res.Section.Name = draft.Section
	if err = tx.QueryRowxContext(ctx, `INSERT INTO sections (name) VALUES ($1) RETURNING id`, draft.Section).Scan(&res.Section.ID); err != nil {
		return SetupResult{}, fmt.Errorf("setup section: %w", err)
	}

	profs := make(map[string]int64)
	for _, dc := range draft.Classes {
		cl := Class{SectionID: res.Section.ID, Name: dc.Name}
		if err = tx.QueryRowxContext(ctx, `INSERT INTO classes (name, section_id) VALUES ($1, $2) RETURNING id`, cl.Name, cl.SectionID).Scan(&cl.ID); err != nil {
			return SetupResult{}, fmt.Errorf("setup class %q: %w", dc.Name, err)
		}
		res.Classes = append(res.Classes, cl)

		for _, name := range dc.Subjects {
			sub := Subject{ClassID: cl.ID, Name: name}
			if err = tx.QueryRowxContext(ctx, `INSERT INTO subjects (name, class_id) VALUES ($1, $2) RETURNING id`, name, cl.ID).Scan(&sub.ID); err != nil {
				return SetupResult{}, fmt.Errorf("setup subject %q: %w", name, err)
			}
			res.Subjects = append(res.Subjects, sub)
		}

		for _, dg := range dc.Groups {
			pid, seen := profs[dg.Professor]
			if !seen {
				pid, err = resolveProfessor(ctx, tx, dg.Professor)
				if err != nil {
					return SetupResult{}, err
				}
				profs[dg.Professor] = pid
				res.Professors = append(res.Professors, Professor{ID: pid, Name: dg.Professor})
			}
			g := Group{ClassID: cl.ID, Name: dg.Name, ProfessorID: sql.NullInt64{Int64: pid, Valid: true}}
			if err = tx.QueryRowxContext(ctx, `INSERT INTO course_groups (name, class_id, professor_id) VALUES ($1, $2, $3) RETURNING id`, g.Name, g.ClassID, pid).Scan(&g.ID); err != nil {
				return SetupResult{}, fmt.Errorf("setup group %q: %w", dg.Name, err)
			}
			res.Groups = append(res.Groups, g)
		}
	}

	if err = tx.Commit(); err != nil {
		return SetupResult{}, fmt.Errorf("setup commit: %w", err)
	}
	return res, nil
}

func resolveProfessor(ctx context.Context, tx *sqlx.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO professors (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("setup professor %q: %w", name, err)
	}
	return id, nil
}

// InsertLecture stores l and fills its id and upload date.
func (s *Store) InsertLecture(ctx context.Context, l *Lecture) error {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO lectures (file_name, file_url, subject_id, professor_id, group_id, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, upload_date`,
		l.FileName, l.FileURL, l.SubjectID, l.ProfessorID, l.GroupID, l.UploaderID,
	).Scan(&l.ID, &l.UploadDate)
	if err != nil {
		return fmt.Errorf("insert lecture: %w", err)
	}
	return nil
}

// LecturesBySubject lists a subject's lectures, newest first.
func (s *Store) LecturesBySubject(ctx context.Context, subjectID int64) ([]Lecture, error) {
	var out []Lecture
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, subject_id, professor_id, group_id, file_name, file_url, uploader_id, upload_date
		FROM lectures WHERE subject_id = $1
		ORDER BY upload_date DESC, id DESC`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("lectures by subject: %w", err)
	}
	return out, nil
}

const listLecturesQuery = `
	SELECT l.id, l.subject_id, l.professor_id, l.group_id, l.file_name, l.file_url,
	       l.uploader_id, l.upload_date,
	       se.name AS section_name, c.name AS class_name, su.name AS subject_name,
	       g.name AS group_name, p.name AS professor_name
	FROM lectures l
	JOIN subjects su ON su.id = l.subject_id
	JOIN classes c ON c.id = su.class_id
	JOIN sections se ON se.id = c.section_id
	LEFT JOIN course_groups g ON g.id = l.group_id
	LEFT JOIN professors p ON p.id = l.professor_id`

// ListLectures returns lectures with resolved names, newest first. A
// non-zero sectionID restricts the list to one section; limit <= 0 means no
// limit.
func (s *Store) ListLectures(ctx context.Context, sectionID int64, limit int) ([]LectureRow, error) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(listLecturesQuery)
	if sectionID != 0 {
		args = append(args, sectionID)
		fmt.Fprintf(&b, " WHERE se.id = $%d", len(args))
	}
	b.WriteString(" ORDER BY l.upload_date DESC, l.id DESC")
	if limit > 0 {
		args = append(args, limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	var out []LectureRow
	if err := s.db.SelectContext(ctx, &out, b.String(), args...); err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	return out, nil
}

// CountLectures returns the total number of lectures.
func (s *Store) CountLectures(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM lectures`); err != nil {
		return 0, fmt.Errorf("count lectures: %w", err)
	}
	return n, nil
}

// AddDeveloper inserts or renames a developer.
func (s *Store) AddDeveloper(ctx context.Context, d Developer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO developers (userid, name) VALUES ($1, $2)
		ON CONFLICT (userid) DO UPDATE SET name = EXCLUDED.name`, d.UserID, d.Name)
	if err != nil {
		return fmt.Errorf("add developer: %w", err)
	}
	return nil
}
