package flows

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/m3rciful/lecturebot/core/logger"
	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"
	"github.com/m3rciful/lecturebot/core/telegram/state"
	"github.com/m3rciful/lecturebot/internal/access"
	"github.com/m3rciful/lecturebot/internal/catalog"
	"github.com/m3rciful/lecturebot/internal/filehost"
	"github.com/m3rciful/lecturebot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

const (
	StepLectureSection   state.Step = "lecture_section"
	StepLectureClass     state.Step = "lecture_class"
	StepLectureSubject   state.Step = "lecture_subject"
	StepLectureGroup     state.Step = "lecture_group"
	StepLectureProfessor state.Step = "lecture_professor"
	StepLectureDetails   state.Step = "lecture_details"
	StepLectureFile      state.Step = "lecture_file"

	StepViewSection state.Step = "view_section"
	StepViewClass   state.Step = "view_class"
	StepViewSubject state.Step = "view_subject"
	StepViewLecture state.Step = "view_lecture"
)

const (
	detailsKey = "details"
	lectureKey = "lecture"

	defaultUploadTimeout = 2 * time.Minute
)

// AddLecture walks to a subject, group and professor, then takes a title
// and a PDF and publishes it.
type AddLecture struct {
	d       *state.Dispatcher
	catalog *catalog.Service
	bot     access.Bot
	files   FileHost
	timeout time.Duration
	walker  *state.Walker
}

func NewAddLecture(deps Deps) *AddLecture {
	a := &AddLecture{
		d:       deps.Dispatcher,
		catalog: deps.Catalog,
		bot:     deps.Bot,
		files:   deps.Files,
		timeout: deps.UploadTimeout,
	}
	if a.timeout <= 0 {
		a.timeout = defaultUploadTimeout
	}
	cache := deps.Catalog.Cache()
	a.walker = &state.Walker{
		Levels: []state.Level{
			sectionLevel(StepLectureSection, cache),
			classLevel(StepLectureClass, cache),
			subjectLevel(StepLectureSubject, cache),
			groupLevel(StepLectureGroup, cache),
			professorLevel(StepLectureProfessor, cache),
		},
		Leaf: a.askDetails,
	}
	a.walker.Register(a.d)
	a.d.Handle(StepLectureDetails, a.details)
	a.d.Handle(StepLectureFile, a.file)
	return a
}

// Start shows the section menu.
func (a *AddLecture) Start(c tele.Context) error {
	return a.walker.Begin(c)
}

func (a *AddLecture) askDetails(c tele.Context, _ *state.Conversation) error {
	if err := a.d.Advance(c, StepLectureDetails); err != nil {
		return err
	}
	return ask(c, texts.LectureAskDetails)
}

func (a *AddLecture) details(c tele.Context, _ *state.Conversation) error {
	details := state.Input(c)
	if details == "" {
		return c.Send(texts.LectureNoDetails)
	}
	if err := a.d.Advance(c, StepLectureFile, state.Set(detailsKey, details)); err != nil {
		return err
	}
	return ask(c, texts.LectureAskFile)
}

// IsPDF reports whether doc declares a PDF MIME type.
func IsPDF(doc *tele.Document) bool {
	return doc != nil && strings.Contains(strings.ToLower(doc.MIME), "pdf")
}

func (a *AddLecture) file(c tele.Context, conv *state.Conversation) error {
	var doc *tele.Document
	if m := c.Message(); m != nil {
		doc = m.Document
	}
	if !IsPDF(doc) {
		return c.Send(texts.LectureNotPDF)
	}
	if a.files == nil || !a.files.Enabled() {
		return a.d.Finish(c, texts.HostDisabled)
	}
	if err := a.d.End(c); err != nil {
		return err
	}
	if err := c.Send(texts.LectureUploading); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(tghelpers.BuildContext(c), a.timeout)
	defer cancel()
	if err := a.publish(ctx, c, conv, doc); err != nil {
		return err
	}
	return c.Send(texts.Sign(texts.LectureAdded))
}

func (a *AddLecture) publish(ctx context.Context, c tele.Context, conv *state.Conversation, doc *tele.Document) error {
	start := time.Now()
	content, err := a.download(&doc.File)
	if err != nil {
		return err
	}
	name := func(k catalog.Kind) string { return conv.Value(state.NameKey(key(k))) }
	filePath := filehost.LecturePath(
		name(catalog.KindSection), name(catalog.KindClass), name(catalog.KindSubject),
		conv.Value(detailsKey), name(catalog.KindGroup),
	)
	f, err := a.files.Upload(ctx, filePath, content, "BOT: Add lecture - "+filePath)
	if err != nil {
		return err
	}

	lecture := &catalog.Lecture{
		SubjectID:   state.ChoiceID(conv, key(catalog.KindSubject)),
		ProfessorID: nullID(state.ChoiceID(conv, key(catalog.KindProfessor))),
		GroupID:     nullID(state.ChoiceID(conv, key(catalog.KindGroup))),
		FileName:    filePath,
		FileURL:     f.URL,
		UploaderID:  tghelpers.UserID(c),
	}
	if err := a.catalog.AddLecture(ctx, lecture); err != nil {
		// The insert may have failed on ctx's own deadline.
		rmCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if rmErr := a.files.Remove(rmCtx, f, "BOT: Revert lecture - "+filePath); rmErr != nil {
			logger.Warn(ctx, logger.CompLectures, "lecture.revert_failed", logger.Err(rmErr),
				slog.String("path", filePath),
			)
		}
		return err
	}
	logger.Info(ctx, logger.CompLectures, "lecture.published",
		slog.String("path", filePath),
		slog.Int("bytes", len(content)),
		slog.Duration("took", logger.Took(start)),
	)
	return nil
}

func (a *AddLecture) download(f *tele.File) ([]byte, error) {
	rc, err := a.bot.File(f)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", f.FileID, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.FileID, err)
	}
	return data, nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// ViewLectures walks to a subject, lists its lectures and sends the chosen
// one to the user's private chat.
type ViewLectures struct {
	d       *state.Dispatcher
	catalog *catalog.Service
	bot     access.Bot
	walker  *state.Walker
}

func NewViewLectures(deps Deps) *ViewLectures {
	v := &ViewLectures{d: deps.Dispatcher, catalog: deps.Catalog, bot: deps.Bot}
	cache := deps.Catalog.Cache()
	v.walker = &state.Walker{
		Levels: []state.Level{
			sectionLevel(StepViewSection, cache),
			classLevel(StepViewClass, cache),
			subjectLevel(StepViewSubject, cache),
			v.lectureLevel(),
		},
		Leaf: v.deliver,
	}
	v.walker.Register(v.d)
	return v
}

// Start shows the section menu.
func (v *ViewLectures) Start(c tele.Context) error {
	return v.walker.Begin(c)
}

func (v *ViewLectures) lectureLevel() state.Level {
	subjectName := func(conv *state.Conversation) string {
		return conv.Value(state.NameKey(key(catalog.KindSubject)))
	}
	return state.Level{
		Step: StepViewLecture,
		Key:  lectureKey,
		Prompt: func(conv *state.Conversation) string {
			return texts.PickLectureOf(subjectName(conv))
		},
		Options: func(ctx context.Context, conv *state.Conversation) ([]state.Option, error) {
			lectures, err := v.catalog.LecturesBySubject(ctx, state.ChoiceID(conv, key(catalog.KindSubject)))
			if err != nil {
				return nil, err
			}
			opts := make([]state.Option, len(lectures))
			for i, l := range lectures {
				opts[i] = state.Option{ID: l.ID, Label: LectureLabel(l)}
			}
			return opts, nil
		},
		Empty: func(conv *state.Conversation) string {
			return texts.Sign(texts.NoLecturesFor(subjectName(conv)))
		},
	}
}

// LectureLabel is the menu entry of a lecture: file name and upload date.
func LectureLabel(l catalog.Lecture) string {
	return fmt.Sprintf("%s (%s)", path.Base(l.FileName), l.UploadDate.Format("2006-01-02"))
}

func (v *ViewLectures) deliver(c tele.Context, conv *state.Conversation) error {
	if err := v.d.End(c); err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	subject := state.ChoiceID(conv, key(catalog.KindSubject))
	lectures, err := v.catalog.LecturesBySubject(ctx, subject)
	if err != nil {
		return err
	}
	id := state.ChoiceID(conv, lectureKey)
	var picked *catalog.Lecture
	for i := range lectures {
		if lectures[i].ID == id {
			picked = &lectures[i]
			break
		}
	}
	if picked == nil {
		return c.Send(texts.NoLecturesFor(conv.Value(state.NameKey(key(catalog.KindSubject)))))
	}

	doc := &tele.Document{
		File:     tele.FromURL(picked.FileURL),
		FileName: path.Base(picked.FileName),
		Caption:  texts.LectureHere,
	}
	if _, err := v.bot.Send(c.Sender(), doc); err != nil {
		logger.Warn(ctx, logger.CompLectures, "lecture.deliver_failed", logger.Err(err),
			slog.Int64("lecture_id", picked.ID),
		)
		return c.Send(texts.LectureDMFailed)
	}
	logger.Info(ctx, logger.CompLectures, "lecture.delivered", slog.Int64("lecture_id", picked.ID))
	if tghelpers.IsGroup(c) {
		return c.Send(texts.LectureSentDM)
	}
	return nil
}
