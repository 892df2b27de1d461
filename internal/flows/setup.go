package flows

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/m3rciful/lecturebot/core/logger"
	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"
	"github.com/m3rciful/lecturebot/core/telegram/state"
	"github.com/m3rciful/lecturebot/internal/catalog"
	"github.com/m3rciful/lecturebot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

const (
	StepSetupAction   state.Step = "setup_action"
	StepSetupSection  state.Step = "setup_section"
	StepSetupClass    state.Step = "setup_class"
	StepSetupSubjects state.Step = "setup_subjects"
	StepSetupGroups   state.Step = "setup_groups"
	StepSetupMore     state.Step = "setup_more"
	StepSetupConfirm  state.Step = "setup_confirm"
)

const (
	minSectionName = 3
	minClassName   = 2
)

// Setup collects a whole section with its classes, subjects and groups and
// saves it in one transaction.
type Setup struct {
	d       *state.Dispatcher
	catalog *catalog.Service
}

func NewSetup(deps Deps) *Setup {
	s := &Setup{d: deps.Dispatcher, catalog: deps.Catalog}
	s.d.Handle(StepSetupAction, s.action)
	s.d.Handle(StepSetupSection, s.section)
	s.d.Handle(StepSetupClass, s.class)
	s.d.Handle(StepSetupSubjects, s.subjects)
	s.d.Handle(StepSetupGroups, s.groups)
	s.d.Handle(StepSetupMore, s.more)
	s.d.Handle(StepSetupConfirm, s.confirm)
	return s
}

// Start shows the setup menu.
func (s *Setup) Start(c tele.Context) error {
	if err := s.d.Begin(c, StepSetupAction); err != nil {
		return err
	}
	return sendPad(c, StepSetupAction, texts.SetupMenu, 2)
}

func (s *Setup) action(c tele.Context, _ *state.Conversation) error {
	n, ok := state.ParseChoice(state.Input(c), 2)
	if !ok {
		return c.Send(texts.InvalidOption)
	}
	if n == 1 {
		sections := s.catalog.Cache().Sections()
		if len(sections) == 0 {
			return s.d.Finish(c, texts.SetupNoSections)
		}
		names := make([]string, len(sections))
		for i, sec := range sections {
			names[i] = sec.Name
		}
		return s.d.Finish(c, texts.Sign(texts.SetupSectionList(names)))
	}
	if err := s.d.Advance(c, StepSetupSection, draftPatch(catalog.SetupDraft{})); err != nil {
		return err
	}
	return ask(c, texts.SetupAskSection)
}

func (s *Setup) section(c tele.Context, conv *state.Conversation) error {
	name := state.Input(c)
	if utf8.RuneCountInString(name) < minSectionName {
		return c.Send(texts.SetupShortSection)
	}
	draft, err := loadDraft(conv)
	if err != nil {
		return err
	}
	draft.Section = name
	if err := s.d.Advance(c, StepSetupClass, draftPatch(draft)); err != nil {
		return err
	}
	return ask(c, texts.SetupAskClass(name))
}

func (s *Setup) class(c tele.Context, conv *state.Conversation) error {
	name := state.Input(c)
	if utf8.RuneCountInString(name) < minClassName {
		return c.Send(texts.SetupShortClass)
	}
	draft, err := loadDraft(conv)
	if err != nil {
		return err
	}
	draft.Classes = append(draft.Classes, catalog.SetupClass{Name: name})
	if err := s.d.Advance(c, StepSetupSubjects, draftPatch(draft)); err != nil {
		return err
	}
	return ask(c, texts.SetupAskSubjects(name))
}

func (s *Setup) subjects(c tele.Context, conv *state.Conversation) error {
	subjects := SplitSubjects(state.Input(c))
	if len(subjects) == 0 {
		return c.Send(texts.SetupNoSubjects)
	}
	draft, err := loadDraft(conv)
	if err != nil {
		return err
	}
	current, err := lastClass(&draft)
	if err != nil {
		return err
	}
	current.Subjects = subjects
	if err := s.d.Advance(c, StepSetupGroups, draftPatch(draft)); err != nil {
		return err
	}
	return ask(c, texts.SetupAskGroups(len(subjects)))
}

func (s *Setup) groups(c tele.Context, conv *state.Conversation) error {
	groups := ParseGroups(state.Input(c))
	if len(groups) == 0 {
		return c.Send(texts.SetupBadGroups)
	}
	draft, err := loadDraft(conv)
	if err != nil {
		return err
	}
	current, err := lastClass(&draft)
	if err != nil {
		return err
	}
	current.Groups = groups
	if err := s.d.Advance(c, StepSetupMore, draftPatch(draft)); err != nil {
		return err
	}
	return sendPad(c, StepSetupMore, texts.SetupAskMore(current.Name), 2)
}

func (s *Setup) more(c tele.Context, conv *state.Conversation) error {
	n, ok := state.ParseChoice(state.Input(c), 2)
	if !ok {
		return c.Send(texts.InvalidOption)
	}
	draft, err := loadDraft(conv)
	if err != nil {
		return err
	}
	if n == 1 {
		if err := s.d.Advance(c, StepSetupClass); err != nil {
			return err
		}
		return ask(c, texts.SetupAskNextClass(len(draft.Classes) + 1))
	}
	if err := s.d.Advance(c, StepSetupConfirm); err != nil {
		return err
	}
	return c.Send(texts.SetupSummary(draft.Section, summary(draft)))
}

func (s *Setup) confirm(c tele.Context, conv *state.Conversation) error {
	if !state.IsYes(state.Input(c)) {
		return s.d.Finish(c, texts.SetupNotSaved)
	}
	draft, err := loadDraft(conv)
	if err != nil {
		return err
	}
	res, err := s.catalog.SaveSetup(tghelpers.BuildContext(c), draft)
	if err != nil {
		return err
	}
	logger.Info(tghelpers.BuildContext(c), logger.CompCatalog, "setup.saved",
		slog.Int64("section_id", res.Section.ID),
		slog.Int("professors", len(res.Professors)),
	)
	return s.d.Finish(c, texts.Sign(texts.SetupSaved(draft.Section)))
}

// SplitSubjects splits a comma separated list, accepting the Arabic comma.
func SplitSubjects(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == '،' })
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ParseGroups reads "group : professor" lines. Lines without exactly two
// non-empty parts are skipped.
func ParseGroups(input string) []catalog.SetupGroup {
	var out []catalog.SetupGroup
	for _, line := range strings.Split(input, "\n") {
		parts := strings.Split(line, ":")
		if len(parts) != 2 {
			continue
		}
		group, prof := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if group == "" || prof == "" {
			continue
		}
		out = append(out, catalog.SetupGroup{Name: group, Professor: prof})
	}
	return out
}

func loadDraft(conv *state.Conversation) (catalog.SetupDraft, error) {
	var draft catalog.SetupDraft
	if err := conv.DecodeDraft(&draft); err != nil {
		return draft, fmt.Errorf("setup draft: %w", err)
	}
	return draft, nil
}

func draftPatch(draft catalog.SetupDraft) state.Patch {
	raw, err := json.Marshal(draft)
	if err != nil {
		// SetupDraft holds only strings and slices.
		panic(err)
	}
	return state.WithDraft(raw)
}

func lastClass(draft *catalog.SetupDraft) (*catalog.SetupClass, error) {
	if len(draft.Classes) == 0 {
		return nil, errors.New("setup draft has no class")
	}
	return &draft.Classes[len(draft.Classes)-1], nil
}

func summary(draft catalog.SetupDraft) []texts.SetupClassSummary {
	out := make([]texts.SetupClassSummary, len(draft.Classes))
	for i, cl := range draft.Classes {
		out[i] = texts.SetupClassSummary{Name: cl.Name, Subjects: cl.Subjects}
		for _, g := range cl.Groups {
			out[i].Groups = append(out[i].Groups, texts.SetupGroupLine{Group: g.Name, Professor: g.Professor})
		}
	}
	return out
}
