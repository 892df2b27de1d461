package flows

import (
	"errors"
	"fmt"

	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"
	"github.com/m3rciful/lecturebot/core/telegram/state"
	"github.com/m3rciful/lecturebot/internal/catalog"
	"github.com/m3rciful/lecturebot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

const (
	StepManageKind          state.Step = "manage_kind"
	StepManageClassSection  state.Step = "manage_class_section"
	StepManageChildSection  state.Step = "manage_child_section"
	StepManageChildClass    state.Step = "manage_child_class"
	StepManageAction        state.Step = "manage_action"
	StepManageAddName       state.Step = "manage_add_name"
	StepManageEditPick      state.Step = "manage_edit_pick"
	StepManageEditName      state.Step = "manage_edit_name"
	StepManageDeletePick    state.Step = "manage_delete_pick"
	StepManageDeleteConfirm state.Step = "manage_delete_confirm"
)

const (
	kindKey   = "kind"
	parentKey = "parent_id"
	targetKey = "target"
)

// Manage adds, renames and deletes catalog entities of one kind.
type Manage struct {
	d       *state.Dispatcher
	catalog *catalog.Service

	// classes walks to a section; children walks to a class.
	classes  *state.Walker
	children *state.Walker
}

func NewManage(deps Deps) *Manage {
	m := &Manage{d: deps.Dispatcher, catalog: deps.Catalog}
	cache := deps.Catalog.Cache()
	m.classes = &state.Walker{
		Levels: []state.Level{sectionLevel(StepManageClassSection, cache)},
		Leaf:   m.showActions,
	}
	m.children = &state.Walker{
		Levels: []state.Level{
			sectionLevel(StepManageChildSection, cache),
			classLevel(StepManageChildClass, cache),
		},
		Leaf: m.showActions,
	}
	m.classes.Register(m.d)
	m.children.Register(m.d)

	m.d.Handle(StepManageKind, m.kind)
	m.d.Handle(StepManageAction, m.action)
	m.d.Handle(StepManageAddName, m.addName)
	m.d.Handle(StepManageEditPick, m.editPick)
	m.d.Handle(StepManageEditName, m.editName)
	m.d.Handle(StepManageDeletePick, m.deletePick)
	m.d.Handle(StepManageDeleteConfirm, m.deleteConfirm)
	return m
}

// Start shows the kind menu.
func (m *Manage) Start(c tele.Context) error {
	if err := m.d.Begin(c, StepManageKind); err != nil {
		return err
	}
	return sendPad(c, StepManageKind, texts.ManageMenu, len(catalog.Kinds))
}

func (m *Manage) kind(c tele.Context, conv *state.Conversation) error {
	n, ok := state.ParseChoice(state.Input(c), len(catalog.Kinds))
	if !ok {
		return c.Send(texts.ManageInvalidKind)
	}
	kind := catalog.Kinds[n-1]
	seed := state.Set(kindKey, string(kind))
	switch kind.Parent() {
	case catalog.KindSection:
		return m.classes.Begin(c, seed)
	case catalog.KindClass:
		return m.children.Begin(c, seed)
	}
	seed(conv)
	return m.showActions(c, conv)
}

func conversationKind(conv *state.Conversation) (catalog.Kind, error) {
	kind := catalog.Kind(conv.Value(kindKey))
	if !kind.Valid() {
		return "", fmt.Errorf("manage: unknown kind %q", kind)
	}
	return kind, nil
}

// showActions lists the entities of the chosen kind under the resolved parent.
func (m *Manage) showActions(c tele.Context, conv *state.Conversation) error {
	kind, err := conversationKind(conv)
	if err != nil {
		return err
	}
	var parent int64
	if p := kind.Parent(); p != "" {
		parent = state.ChoiceID(conv, key(p))
	}
	opts := itemOptions(m.catalog.Cache().Items(kind, parent))
	patches := []state.Patch{state.Set(kindKey, string(kind)), state.SetInt(parentKey, parent), state.WithOptions(opts)}
	if err := m.d.Advance(c, StepManageAction, patches...); err != nil {
		return err
	}
	actions := 3
	if len(opts) == 0 {
		actions = 1
	}
	return sendPad(c, StepManageAction, texts.ManageActions(string(kind), labels(opts)), actions)
}

func (m *Manage) action(c tele.Context, conv *state.Conversation) error {
	kind, err := conversationKind(conv)
	if err != nil {
		return err
	}
	actions := 3
	if len(conv.Options) == 0 {
		actions = 1
	}
	n, ok := state.ParseChoice(state.Input(c), actions)
	if !ok {
		if len(conv.Options) == 0 {
			return c.Send(texts.ManageNothingTo(string(kind)))
		}
		return c.Send(texts.ManageInvalidAction)
	}
	switch n {
	case 1:
		if err := m.d.Advance(c, StepManageAddName); err != nil {
			return err
		}
		return ask(c, texts.ManageAskName(string(kind)))
	case 2:
		if err := m.d.Advance(c, StepManageEditPick); err != nil {
			return err
		}
		return m.d.ShowMenu(c, StepManageEditPick, texts.ManagePickEdit(string(kind)), conv.Options)
	default:
		if err := m.d.Advance(c, StepManageDeletePick); err != nil {
			return err
		}
		return m.d.ShowMenu(c, StepManageDeletePick, texts.ManagePickDelete(string(kind)), conv.Options)
	}
}

func (m *Manage) addName(c tele.Context, conv *state.Conversation) error {
	kind, err := conversationKind(conv)
	if err != nil {
		return err
	}
	name := state.Input(c)
	if name == "" {
		return c.Send(texts.ManageEmptyName)
	}
	parent, _ := conv.Int(parentKey)
	it, err := m.catalog.Create(tghelpers.BuildContext(c), kind, parent, name)
	if errors.Is(err, catalog.ErrDuplicate) {
		return c.Send(texts.ManageNameExists)
	}
	if err != nil {
		return err
	}
	return m.d.Finish(c, texts.Sign(texts.ManageAdded(string(kind), it.Name)))
}

// pickTarget records the entity chosen from the captured options.
func (m *Manage) pickTarget(c tele.Context, conv *state.Conversation, next state.Step) (state.Option, bool, error) {
	n, ok := state.ParseChoice(state.Input(c), len(conv.Options))
	if !ok {
		return state.Option{}, false, c.Send(texts.InvalidChoice)
	}
	picked := conv.Options[n-1]
	err := m.d.Advance(c, next,
		state.SetInt(state.IDKey(targetKey), picked.ID),
		state.Set(state.NameKey(targetKey), picked.Label),
	)
	return picked, true, err
}

func (m *Manage) editPick(c tele.Context, conv *state.Conversation) error {
	kind, err := conversationKind(conv)
	if err != nil {
		return err
	}
	picked, ok, err := m.pickTarget(c, conv, StepManageEditName)
	if err != nil || !ok {
		return err
	}
	return ask(c, texts.ManageAskNewName(string(kind), picked.Label))
}

func (m *Manage) editName(c tele.Context, conv *state.Conversation) error {
	kind, err := conversationKind(conv)
	if err != nil {
		return err
	}
	name := state.Input(c)
	if name == "" {
		return c.Send(texts.ManageEmptyName)
	}
	old := conv.Value(state.NameKey(targetKey))
	err = m.catalog.Rename(tghelpers.BuildContext(c), kind, state.ChoiceID(conv, targetKey), name)
	if errors.Is(err, catalog.ErrDuplicate) {
		return c.Send(texts.ManageNameExists)
	}
	if err != nil {
		return err
	}
	return m.d.Finish(c, texts.Sign(texts.ManageRenamed(string(kind), old, name)))
}

func (m *Manage) deletePick(c tele.Context, conv *state.Conversation) error {
	kind, err := conversationKind(conv)
	if err != nil {
		return err
	}
	picked, ok, err := m.pickTarget(c, conv, StepManageDeleteConfirm)
	if err != nil || !ok {
		return err
	}
	return c.Send(texts.ManageConfirmDelete(string(kind), picked.Label))
}

func (m *Manage) deleteConfirm(c tele.Context, conv *state.Conversation) error {
	if !state.IsConfirm(state.Input(c)) {
		return m.d.Finish(c, texts.ManageDeleteAborted)
	}
	kind, err := conversationKind(conv)
	if err != nil {
		return err
	}
	name := conv.Value(state.NameKey(targetKey))
	if err := m.catalog.Delete(tghelpers.BuildContext(c), kind, state.ChoiceID(conv, targetKey)); err != nil {
		return err
	}
	return m.d.Finish(c, texts.Sign(texts.ManageDeleted(string(kind), name)))
}
