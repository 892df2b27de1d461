package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/lecturebot/core/logger"
)

// Repository is the persistence the service writes through.
type Repository interface {
	LoadSnapshot(ctx context.Context) (Snapshot, error)
	Create(ctx context.Context, kind Kind, parentID int64, name string) (Item, error)
	Rename(ctx context.Context, kind Kind, id int64, name string) error
	Delete(ctx context.Context, kind Kind, id int64) error
	SaveSetup(ctx context.Context, draft SetupDraft) (SetupResult, error)
	InsertLecture(ctx context.Context, l *Lecture) error
	LecturesBySubject(ctx context.Context, subjectID int64) ([]Lecture, error)
	ListLectures(ctx context.Context, sectionID int64, limit int) ([]LectureRow, error)
	CountLectures(ctx context.Context) (int, error)
	AddDeveloper(ctx context.Context, d Developer) error
}

// Service writes to the repository first and mirrors successful writes into
// the cache. A failed write leaves the cache untouched.
type Service struct {
	repo    Repository
	cache   *Cache
	timeout time.Duration
}

// NewService returns a service bounded by timeout per repository call.
func NewService(repo Repository, cache *Cache, timeout time.Duration) *Service {
	if cache == nil {
		cache = NewCache()
	}
	return &Service{repo: repo, cache: cache, timeout: timeout}
}

// Cache exposes the read side.
func (s *Service) Cache() *Cache { return s.cache }

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Seed loads the whole catalog into the cache.
func (s *Service) Seed(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	start := time.Now()
	snap, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	s.cache.Replace(snap)
	c := s.cache.Counts()
	logger.Info(ctx, logger.CompCatalog, "catalog.loaded",
		slog.Int("sections", c.Sections),
		slog.Int("classes", c.Classes),
		slog.Int("subjects", c.Subjects),
		slog.Int("groups", c.Groups),
		slog.Int("professors", c.Professors),
		slog.Int("developers", c.Developers),
		slog.Duration("took", logger.Took(start)),
	)
	return nil
}

// Create adds a named entity under parentID.
func (s *Service) Create(ctx context.Context, kind Kind, parentID int64, name string) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, ErrEmptyName
	}
	if p := kind.Parent(); p != "" && !s.cache.Has(p, parentID) {
		return Item{}, fmt.Errorf("create %s under %s %d: %w", kind, p, parentID, ErrParentNotFound)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	it, err := s.repo.Create(ctx, kind, parentID, name)
	if err != nil {
		return Item{}, err
	}
	s.cache.Put(it)
	logger.Info(ctx, logger.CompCatalog, "catalog.create",
		slog.String("kind", string(kind)),
		slog.Int64("id", it.ID),
		slog.Int64("parent_id", it.ParentID),
	)
	return it, nil
}

// Rename changes the name of an existing entity.
func (s *Service) Rename(ctx context.Context, kind Kind, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if !s.cache.Has(kind, id) {
		return fmt.Errorf("rename %s %d: %w", kind, id, ErrNotFound)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.repo.Rename(ctx, kind, id, name); err != nil {
		return err
	}
	s.cache.Rename(kind, id, name)
	logger.Info(ctx, logger.CompCatalog, "catalog.rename",
		slog.String("kind", string(kind)),
		slog.Int64("id", id),
	)
	return nil
}

// Delete removes an entity and its dependants.
func (s *Service) Delete(ctx context.Context, kind Kind, id int64) error {
	if !s.cache.Has(kind, id) {
		return fmt.Errorf("delete %s %d: %w", kind, id, ErrNotFound)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.cache.Delete(kind, id)
	logger.Info(ctx, logger.CompCatalog, "catalog.delete",
		slog.String("kind", string(kind)),
		slog.Int64("id", id),
	)
	return nil
}

// SaveSetup persists a setup draft and mirrors it.
func (s *Service) SaveSetup(ctx context.Context, draft SetupDraft) (SetupResult, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	res, err := s.repo.SaveSetup(ctx, draft)
	if err != nil {
		return SetupResult{}, err
	}
	s.cache.ApplySetup(res)
	logger.Info(ctx, logger.CompCatalog, "catalog.setup",
		slog.Int64("section_id", res.Section.ID),
		slog.Int("classes", len(res.Classes)),
		slog.Int("subjects", len(res.Subjects)),
		slog.Int("groups", len(res.Groups)),
	)
	return res, nil
}

// AddLecture records an uploaded lecture for a known subject.
func (s *Service) AddLecture(ctx context.Context, l *Lecture) error {
	if !s.cache.Has(KindSubject, l.SubjectID) {
		return fmt.Errorf("add lecture to subject %d: %w", l.SubjectID, ErrParentNotFound)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.repo.InsertLecture(ctx, l); err != nil {
		return err
	}
	logger.Info(ctx, logger.CompLectures, "lecture.added",
		slog.Int64("id", l.ID),
		slog.Int64("subject_id", l.SubjectID),
	)
	return nil
}

func (s *Service) LecturesBySubject(ctx context.Context, subjectID int64) ([]Lecture, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.LecturesBySubject(ctx, subjectID)
}

func (s *Service) ListLectures(ctx context.Context, sectionID int64, limit int) ([]LectureRow, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.ListLectures(ctx, sectionID, limit)
}

func (s *Service) CountLectures(ctx context.Context) (int, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.CountLectures(ctx)
}

// AddDeveloper grants developer rights to a user.
func (s *Service) AddDeveloper(ctx context.Context, d Developer) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.repo.AddDeveloper(ctx, d); err != nil {
		return err
	}
	s.cache.AddDeveloper(d)
	logger.Info(ctx, logger.CompCatalog, "developer.added", slog.Int64("developer_id", d.UserID))
	return nil
}

// IsDeveloper reports whether userID is a registered developer.
func (s *Service) IsDeveloper(userID int64) bool {
	return s.cache.IsDeveloper(userID)
}
