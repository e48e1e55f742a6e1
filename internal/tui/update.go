package tui

import (
	"context"
	"fmt"

	"kb-cli/internal/dragdrop"
	"kb-cli/internal/kb"
	"kb-cli/internal/model"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case contentTableUpdatedMsg:
		m.dd.Register(dropRows(m.rows))
		return m, nil

	case reloadMsg:
		if err := m.session.Reload(context.Background()); err != nil {
			cmd := m.fail(err)
			return m, cmd
		}
		m.rebuild()
		return m, m.tableUpdated()

	case watchErrMsg:
		m.log.WithError(msg.err).Warn("tui: watcher stopped")
		return m, nil

	case editorDoneMsg:
		cmd := m.applyEditorResult(msg)
		return m, cmd

	case flashClearMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		case modeMove:
			return m.updateMove(msg)
		}
		return m.updateBrowse(msg)
	}

	if s, ok := msg.(fmt.Stringer); ok && m.mode != modeInput {
		if chord, ok := chordFromUnknownCSI(s.String()); ok {
			return m.handleShortcut(chord)
		}
	}
	return m, nil
}

func (m appModel) handleShortcut(chord string) (tea.Model, tea.Cmd) {
	switch kb.ShortcutFor(chord) {
	case kb.ShortcutUndo:
		cmd := m.replay(m.session.Undo, "undo")
		return m, cmd
	case kb.ShortcutRedo:
		cmd := m.replay(m.session.Redo, "redo")
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if kb.ShortcutFor(msg.String()) != kb.ShortcutNone {
		return m.handleShortcut(msg.String())
	}
	book := m.session.SelectedBook()
	cur, hasCur := m.current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.saveLayout()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.refreshPane()
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.refreshPane()
		}
	case key.Matches(msg, m.keys.Toggle):
		if hasCur && cur.item.Type.IsContainer() {
			m.expanded[cur.ID] = !cur.expanded
			m.rebuild()
			return m, m.tableUpdated()
		}
		m.showPane = true
		m.resize()
	case key.Matches(msg, m.keys.Expand):
		if hasCur && cur.item.Type.IsContainer() && !cur.expanded {
			m.expanded[cur.ID] = true
			m.rebuild()
			return m, m.tableUpdated()
		}
	case key.Matches(msg, m.keys.Collapse):
		if !hasCur {
			break
		}
		if cur.item.Type.IsContainer() && cur.expanded {
			m.expanded[cur.ID] = false
		} else if pid := cur.item.Parent(); pid != "" {
			for i, r := range m.rows {
				if r.ID == pid {
					m.cursor = i
				}
			}
			m.expanded[pid] = false
		}
		m.rebuild()
		return m, m.tableUpdated()
	case key.Matches(msg, m.keys.AddCat):
		cmd := m.startAdd(model.ItemTypeCategory)
		return m, cmd
	case key.Matches(msg, m.keys.AddFolder):
		cmd := m.startAdd(model.ItemTypeFolder)
		return m, cmd
	case key.Matches(msg, m.keys.AddArt):
		cmd := m.startAdd(model.ItemTypeArticle)
		return m, cmd
	case key.Matches(msg, m.keys.Rename):
		if hasCur {
			cmd := m.startInput(inputRename, cur.item.Type, cur.item.Name)
			return m, cmd
		}
	case key.Matches(msg, m.keys.Edit):
		if hasCur && !cur.item.Type.IsContainer() {
			cmd := m.editContent(cur)
			return m, cmd
		}
	case key.Matches(msg, m.keys.Delete):
		if hasCur {
			m.mode = modeConfirmDelete
		}
	case key.Matches(msg, m.keys.Duplicate):
		if hasCur {
			res, err := m.session.Mutator.DuplicateItem(book, cur.ID)
			if err != nil {
				cmd := m.fail(err)
				return m, cmd
			}
			cmd := m.afterMutation(fmt.Sprintf("duplicated as %s", res.Item.Name))
			return m, cmd
		}
	case key.Matches(msg, m.keys.Mark):
		if hasCur {
			r := cur.Row
			m.dragged = &r
			m.mode = modeMove
		}
	case key.Matches(msg, m.keys.Undo):
		return m.handleShortcut("ctrl+z")
	case key.Matches(msg, m.keys.Redo):
		return m.handleShortcut("ctrl+y")
	case key.Matches(msg, m.keys.Preview):
		m.showPane = !m.showPane
		m.resize()
	case key.Matches(msg, m.keys.Book):
		cmd := m.nextBook()
		return m, cmd
	}
	return m, nil
}

func (m *appModel) startAdd(typ model.ItemType) tea.Cmd {
	if m.session.SelectedBook() == "" {
		return m.setFlash("create a book first (kb books add)", true)
	}
	return m.startInput(inputAdd, typ, "")
}

func (m *appModel) nextBook() tea.Cmd {
	books := m.session.DB.SortedBooks()
	if len(books) < 2 {
		return m.setFlash("no other book", false)
	}
	next := books[0].ID
	for i, b := range books {
		if b.ID == m.session.SelectedBook() {
			next = books[(i+1)%len(books)].ID
		}
	}
	m.saveLayout()
	if err := m.session.SwitchBook(context.Background(), next); err != nil {
		return m.fail(err)
	}
	m.cursor = 0
	m.restoreLayout()
	return m.afterMutation("switched to " + m.bookName())
}

func (m appModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		cmd := m.submitInput()
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeBrowse
	if msg.String() != "y" {
		return m, nil
	}
	res, err := m.session.Mutator.DeleteItem(m.session.SelectedBook(), m.currentID())
	if err != nil {
		cmd := m.fail(err)
		return m, cmd
	}
	if m.cursor > 0 {
		m.cursor--
	}
	cmd := m.afterMutation(fmt.Sprintf("deleted %s", res.Item.Name))
	return m, cmd
}

func (m appModel) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dragged == nil {
		m.mode = modeBrowse
		return m, nil
	}
	dragged := *m.dragged
	target, hasTarget := m.current()

	drop := func(pos model.Position, toEnd bool) (tea.Model, tea.Cmd) {
		m.mode = modeBrowse
		m.dragged = nil
		var err error
		switch {
		case toEnd:
			_, err = m.dd.DropAt(dragged, nil, "")
		case !hasTarget:
			return m, nil
		default:
			row, ok := m.dd.Target(target.ID)
			if !ok {
				err = dragdrop.ErrStaleTarget
				break
			}
			if pos == "" {
				// Keyboard drops land mid-row, which means inside for containers and after for leaves.
				_, err = m.dd.Drop(dragged, &row, 0.5, 1)
			} else {
				_, err = m.dd.DropAt(dragged, &row, pos)
			}
		}
		if err != nil {
			m.rebuild()
			return m, tea.Batch(m.fail(err), m.tableUpdated())
		}
		if hasTarget && target.item.Type.IsContainer() {
			m.expanded[target.ID] = true
		}
		m.rebuild()
		for i, r := range m.rows {
			if r.ID == dragged.ID {
				m.cursor = i
			}
		}
		cmd := m.afterMutation("")
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
		m.dragged = nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Before):
		return drop(model.PositionBefore, false)
	case key.Matches(msg, m.keys.After):
		return drop(model.PositionAfter, false)
	case key.Matches(msg, m.keys.Inside):
		return drop(model.PositionInside, false)
	case key.Matches(msg, m.keys.Drop):
		return drop("", false)
	case key.Matches(msg, m.keys.End):
		return drop("", true)
	}
	return m, nil
}
