package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kb-cli/internal/dragdrop"
	"kb-cli/internal/kb"
	"kb-cli/internal/model"
	"kb-cli/internal/mutate"
	"kb-cli/internal/preview"
	"kb-cli/internal/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type mode int

const (
	modeBrowse mode = iota
	modeInput
	modeConfirmDelete
	modeMove
)

type inputPurpose int

const (
	inputAdd inputPurpose = iota
	inputRename
)

// contentTableUpdatedMsg is dispatched after every rebuild of the visible rows so drop
// targets are registered against the current layout.
type contentTableUpdatedMsg struct{ rows int }

type reloadMsg struct{}

type watchErrMsg struct{ err error }

type flashClearMsg struct{ seq int }

const flashDuration = 3 * time.Second

type appModel struct {
	session  *kb.Session
	dd       *dragdrop.Controller
	renderer *preview.Renderer
	log      logrus.FieldLogger
	keys     keyMap
	help     help.Model
	st       styles
	glyphs   glyphSet
	title    cases.Caser

	rows     []treeRow
	cursor   int
	expanded map[string]bool
	ui       *store.TUIState

	mode      mode
	input     textinput.Model
	purpose   inputPurpose
	addType   model.ItemType
	dragged   *dragdrop.Row
	showPane  bool
	pane      viewport.Model
	paneWidth int

	flash    string
	flashErr bool
	flashSeq int

	width  int
	height int
}

func newAppModel(s *kb.Session, renderer *preview.Renderer, log logrus.FieldLogger) appModel {
	ti := textinput.New()
	ti.CharLimit = 200
	m := appModel{
		session:  s,
		renderer: renderer,
		log:      log,
		keys:     defaultKeyMap(),
		help:     help.New(),
		st:       newStyles(),
		glyphs:   glyphsFromEnv(),
		title:    cases.Title(language.English),
		expanded: map[string]bool{},
		input:    ti,
		pane:     viewport.New(0, 0),
	}
	m.dd = dragdrop.NewController(s.Mutator, s.SelectedBook)

	ui, err := s.Store.LoadTUIState()
	if err != nil {
		log.WithError(err).Warn("tui: ignoring saved layout")
		ui = &store.TUIState{Books: map[string]store.TUIBookState{}}
	}
	m.ui = ui
	m.showPane = ui.ShowPreview
	m.restoreLayout()
	return m
}

// restoreLayout applies the saved expansion and cursor of the selected book.
func (m *appModel) restoreLayout() {
	saved := m.ui.Books[m.session.SelectedBook()]
	m.expanded = map[string]bool{}
	for id, open := range saved.Expanded {
		m.expanded[id] = open
	}
	m.rebuild()
	for i, r := range m.rows {
		if r.ID == saved.CursorID {
			m.cursor = i
		}
	}
	m.refreshPane()
}

// saveLayout records the selected book's layout in the workspace.
func (m *appModel) saveLayout() {
	book := m.session.SelectedBook()
	if book != "" {
		exp := make(map[string]bool, len(m.expanded))
		for id, open := range m.expanded {
			exp[id] = open
		}
		m.ui.Books[book] = store.TUIBookState{Expanded: exp, CursorID: m.currentID()}
	}
	m.ui.ShowPreview = m.showPane
	if err := m.session.Store.SaveTUIState(m.ui, m.session.DB); err != nil {
		m.log.WithError(err).Warn("tui: could not save layout")
	}
}

func (m appModel) Init() tea.Cmd {
	return m.tableUpdated()
}

func (m appModel) tableUpdated() tea.Cmd {
	n := len(m.rows)
	return func() tea.Msg { return contentTableUpdatedMsg{rows: n} }
}

// rebuild recomputes the visible rows and keeps the cursor on the same item when possible.
func (m *appModel) rebuild() {
	cur := m.currentID()
	m.rows = flattenTree(m.session.DB, m.session.SelectedBook(), m.expanded)
	m.cursor = 0
	for i, r := range m.rows {
		if r.ID == cur {
			m.cursor = i
			break
		}
	}
	m.refreshPane()
}

func (m appModel) currentID() string {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		return m.rows[m.cursor].ID
	}
	return ""
}

func (m appModel) current() (treeRow, bool) {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		return m.rows[m.cursor], true
	}
	return treeRow{}, false
}

func (m *appModel) setFlash(msg string, isErr bool) tea.Cmd {
	m.flash = msg
	m.flashErr = isErr
	m.flashSeq++
	seq := m.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashClearMsg{seq: seq} })
}

func (m *appModel) fail(err error) tea.Cmd {
	var nf mutate.NotFoundError
	switch {
	case errors.Is(err, mutate.ErrCycle):
		return m.setFlash("cannot move an item into itself", true)
	case errors.Is(err, dragdrop.ErrStaleTarget):
		return m.setFlash("drop target is no longer shown, pick it again", true)
	case errors.As(err, &nf):
		return m.setFlash(nf.Error(), true)
	}
	m.log.WithError(err).Warn("tui: operation failed")
	return m.setFlash(err.Error(), true)
}

// afterMutation surfaces persistence errors and rebuilds the rows.
func (m *appModel) afterMutation(okMsg string) tea.Cmd {
	if err := m.session.Err(); err != nil {
		m.rebuild()
		return tea.Batch(m.fail(err), m.tableUpdated())
	}
	m.rebuild()
	var flash tea.Cmd
	if okMsg != "" {
		flash = m.setFlash(okMsg, false)
	}
	return tea.Batch(flash, m.tableUpdated())
}

func (m *appModel) refreshPane() {
	if !m.showPane || m.paneWidth <= 0 {
		return
	}
	r, ok := m.current()
	if !ok {
		m.pane.SetContent("")
		return
	}
	book := m.session.SelectedBook()
	body := m.renderer.Item(r.item, m.session.DB.Path(book, r.ID), m.paneWidth-2)
	lines := strings.Split(body, "\n")
	for len(lines) > 0 && visuallyEmpty(lines[0]) {
		lines = lines[1:]
	}
	m.pane.SetContent(strings.Join(lines, "\n"))
	m.pane.GotoTop()
}

func (m *appModel) resize() {
	m.help.Width = m.width
	m.paneWidth = 0
	if m.showPane && m.width >= 60 {
		m.paneWidth = m.width / 2
	}
	m.pane.Width = m.paneWidth
	m.pane.Height = m.bodyHeight()
	m.refreshPane()
}

func (m appModel) bodyHeight() int {
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m appModel) bookName() string {
	if b, ok := m.session.DB.FindBook(m.session.SelectedBook()); ok {
		return b.Name
	}
	return "(no book)"
}

func (m appModel) typeLabel(t model.ItemType) string {
	return m.title.String(string(t))
}

func (m *appModel) startInput(p inputPurpose, typ model.ItemType, value string) tea.Cmd {
	m.mode = modeInput
	m.purpose = p
	m.addType = typ
	m.input.SetValue(value)
	m.input.CursorEnd()
	switch p {
	case inputAdd:
		m.input.Placeholder = fmt.Sprintf("%s name", m.typeLabel(typ))
	default:
		m.input.Placeholder = "new name"
	}
	return m.input.Focus()
}

// addParent picks where a new item of typ goes relative to the cursor row.
func (m appModel) addParent(typ model.ItemType) *string {
	r, ok := m.current()
	if !ok {
		return nil
	}
	var container *model.Item
	if r.item.Type.IsContainer() {
		it := r.item
		container = &it
	} else if pid := r.item.Parent(); pid != "" {
		if p, ok := m.session.DB.GetItem(m.session.SelectedBook(), pid); ok {
			cp := p.Clone()
			container = &cp
		}
	}
	if container == nil {
		return nil
	}
	if typ == model.ItemTypeCategory && container.Type != model.ItemTypeCategory {
		return container.Clone().ParentID
	}
	return model.StrPtr(container.ID)
}

func (m *appModel) submitInput() tea.Cmd {
	val := strings.TrimSpace(m.input.Value())
	m.mode = modeBrowse
	m.input.Blur()
	if val == "" {
		return nil
	}
	book := m.session.SelectedBook()
	switch m.purpose {
	case inputAdd:
		res, err := m.session.Mutator.AddItem(book, mutate.AddItemInput{Type: m.addType, Name: val, ParentID: m.addParent(m.addType)})
		if err != nil {
			return m.fail(err)
		}
		if pid := res.Item.Parent(); pid != "" {
			m.expanded[pid] = true
		}
		m.rebuild()
		for i, r := range m.rows {
			if r.ID == res.Item.ID {
				m.cursor = i
			}
		}
		return m.afterMutation(fmt.Sprintf("added %s", res.Item.Name))
	case inputRename:
		if _, err := m.session.Mutator.RenameItem(book, m.currentID(), val); err != nil {
			return m.fail(err)
		}
		return m.afterMutation("")
	}
	return nil
}

func (m *appModel) replay(op func(context.Context) (string, error), verb string) tea.Cmd {
	desc, err := op(context.Background())
	if err != nil {
		m.rebuild()
		return tea.Batch(m.setFlash(fmt.Sprintf("%s failed: %v", verb, err), true), m.tableUpdated())
	}
	if desc == "" {
		return m.setFlash("nothing to "+verb, false)
	}
	return m.afterMutation(fmt.Sprintf("%s: %s", verb, desc))
}
