package commands

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/lecturebot/core/logger"
	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"
	"github.com/m3rciful/lecturebot/core/telegram/ui"
	"github.com/m3rciful/lecturebot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

const inlineLimit = 50

func (h *Handlers) searchHits(term string) []texts.SearchHit {
	found := h.deps.Catalog.Cache().SearchSubjects(term)
	hits := make([]texts.SearchHit, len(found))
	for i, f := range found {
		hits[i] = texts.SearchHit{Subject: f.Name, Section: f.SectionName, Class: f.ClassName}
	}
	return hits
}

// Search matches subject names against the arguments.
func (h *Handlers) Search(c tele.Context) error {
	term := tghelpers.Args(c)
	if term == "" {
		return c.Reply(texts.SearchUsage)
	}
	hits := h.searchHits(term)
	logger.Debug(tghelpers.BuildContext(c), logger.CompCatalog, "search",
		slog.String("term", logger.SanitizeLimit(term, 64)),
		slog.Int("hits", len(hits)),
	)
	if len(hits) == 0 {
		return c.Reply(texts.Sign(texts.SearchNoResults(term)))
	}
	return c.Reply(texts.Sign(texts.SearchResults(term, hits)))
}

// Inline answers "@bot term" with matching subjects.
func (h *Handlers) Inline(c tele.Context) error {
	q := c.Query()
	if q == nil {
		return nil
	}
	term := strings.TrimSpace(q.Text)
	var results tele.Results
	if term != "" {
		for i, hit := range h.searchHits(term) {
			if i == inlineLimit {
				break
			}
			results = append(results, ui.NewArticleResult(
				strconv.Itoa(i),
				hit.Subject,
				texts.SearchInline(hit.Section, hit.Class),
				texts.SearchResults(term, []texts.SearchHit{hit}),
			))
		}
	}
	return c.Answer(&tele.QueryResponse{Results: results, CacheTime: 60})
}

// ListLectures lists recent lectures, optionally of one section named in
// the arguments.
func (h *Handlers) ListLectures(c tele.Context) error {
	var sectionID int64
	if name := tghelpers.Args(c); name != "" {
		for _, s := range h.deps.Catalog.Cache().Sections() {
			if strings.EqualFold(s.Name, name) {
				sectionID = s.ID
				break
			}
		}
		if sectionID == 0 {
			return c.Reply(texts.SectionNotFound(name))
		}
	}
	rows, err := h.deps.Catalog.ListLectures(tghelpers.BuildContext(c), sectionID, h.deps.ListLimit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return c.Reply(texts.Sign(texts.NoLecturesYet))
	}
	lines := make([]texts.LectureLine, len(rows))
	for i, r := range rows {
		lines[i] = texts.LectureLine{
			Section:   r.SectionName,
			Class:     r.ClassName,
			Subject:   r.SubjectName,
			Title:     lectureTitle(r.FileName),
			Professor: r.ProfessorName.String,
			Date:      r.UploadDate,
		}
	}
	return c.Reply(texts.Sign(texts.LectureList(lines)))
}

// lectureTitle strips the directory and extension of a stored file name.
func lectureTitle(fileName string) string {
	if i := strings.LastIndexByte(fileName, '/'); i >= 0 {
		fileName = fileName[i+1:]
	}
	return strings.TrimSuffix(fileName, ".pdf")
}
