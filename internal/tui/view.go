package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if m.width == 0 {
		return ""
	}
	treeWidth := m.width
	if m.paneWidth > 0 {
		treeWidth = m.width - m.paneWidth
	}

	var b strings.Builder
	b.WriteString(fitLine(m.headerLine(), m.width))
	b.WriteByte('\n')

	body := m.treeView(treeWidth, m.bodyHeight())
	if m.paneWidth > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.st.pane.Width(m.paneWidth-2).Height(m.bodyHeight()).Render(m.pane.View()))
	}
	b.WriteString(body)
	b.WriteByte('\n')
	b.WriteString(fitLine(m.statusLine(), m.width))
	b.WriteByte('\n')
	b.WriteString(m.footer())
	return b.String()
}

func (m appModel) headerLine() string {
	h := m.st.header.Render(m.bookName())
	if r, ok := m.current(); ok {
		path := m.session.DB.Path(m.session.SelectedBook(), r.ID)
		h += "  " + m.st.crumb.Render(strings.Join(path, m.glyphs.crumbSep))
	}
	return h
}

func (m appModel) treeView(width, height int) string {
	if len(m.rows) == 0 {
		msg := "empty book: press C to add a category"
		if m.session.SelectedBook() == "" {
			msg = "no book selected: run `kb books add <name>`"
		}
		lines := []string{fitLine(m.st.muted.Render(msg), width)}
		for len(lines) < height {
			lines = append(lines, strings.Repeat(" ", width))
		}
		return strings.Join(lines, "\n")
	}

	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	lines := make([]string, 0, height)
	for i := start; i < len(m.rows) && len(lines) < height; i++ {
		lines = append(lines, m.rowLine(i, width))
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) rowLine(i, width int) string {
	r := m.rows[i]
	glyph := m.glyphs.twisty(r)
	label := fmt.Sprintf("%s%s%s %s", strings.Repeat("  ", r.Indent), glyph, r.item.Name, m.st.muted.Render(m.typeLabel(r.item.Type)))
	if badge := statusBadge(r.item.Status); badge != "" {
		label += " " + badge
	}
	if m.dragged != nil && m.dragged.ID == r.ID {
		label = m.st.marked.Render(m.glyphs.marker) + label
	}
	line := fitLine(label, width)
	if i == m.cursor {
		return m.st.selected.Render(line)
	}
	return line
}

func (m appModel) statusLine() string {
	switch m.mode {
	case modeInput:
		return m.st.prompt.Render("› ") + m.input.View()
	case modeConfirmDelete:
		if r, ok := m.current(); ok {
			return m.st.flashErr.Render(fmt.Sprintf("delete %s %q and everything under it? (y/N)", r.item.Type, r.item.Name))
		}
	case modeMove:
		if m.dragged != nil {
			return m.st.marked.Render(fmt.Sprintf("moving %s: pick a target, then b/a/i, enter, or e for end", m.dragged.ID))
		}
	}
	if m.flash != "" {
		if m.flashErr {
			return m.st.flashErr.Render(m.flash)
		}
		return m.st.flash.Render(m.flash)
	}
	return ""
}

func (m appModel) footer() string {
	if m.mode == modeMove {
		return m.help.View(moveHelp{k: m.keys})
	}
	return m.help.View(m.keys)
}
