package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	Collapse  key.Binding
	Expand    key.Binding
	AddCat    key.Binding
	AddFolder key.Binding
	AddArt    key.Binding
	Rename    key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Duplicate key.Binding
	Mark      key.Binding
	Undo      key.Binding
	Redo      key.Binding
	Preview   key.Binding
	Book      key.Binding
	Help      key.Binding
	Quit      key.Binding

	// Move mode.
	Before key.Binding
	After  key.Binding
	Inside key.Binding
	End    key.Binding
	Drop   key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open/close")),
		Collapse:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
		Expand:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand")),
		AddCat:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "new category")),
		AddFolder: key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "new folder")),
		AddArt:    key.NewBinding(key.WithKeys("A", "n"), key.WithHelp("n", "new article")),
		Rename:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit content")),
		Delete:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Duplicate: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "duplicate")),
		Mark:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		Undo:      key.NewBinding(key.WithKeys("u", "ctrl+z"), key.WithHelp("u/ctrl+z", "undo")),
		Redo:      key.NewBinding(key.WithKeys("U", "ctrl+y", "ctrl+r"), key.WithHelp("U/ctrl+y", "redo")),
		Preview:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Book:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "next book")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Before: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "before")),
		After:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "after")),
		Inside: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "inside")),
		End:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "to end")),
		Drop:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp and FullHelp implement help.KeyMap for browse mode.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.AddArt, k.Mark, k.Undo, k.Redo, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Collapse, k.Expand},
		{k.AddCat, k.AddFolder, k.AddArt, k.Rename, k.Edit, k.Duplicate, k.Delete},
		{k.Mark, k.Undo, k.Redo, k.Preview, k.Book, k.Quit},
	}
}

type moveHelp struct{ k keyMap }

func (h moveHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Up, h.k.Down, h.k.Before, h.k.After, h.k.Inside, h.k.Drop, h.k.End, h.k.Cancel}
}

func (h moveHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.ShortHelp()} }

// chordFromUnknownCSI decodes CSI-u key reports ("ESC [ <code> ; <mods> u") that Bubble Tea
// passes through as unknown sequences, e.g. "?CSI[49 50 50 59 54 117]?" is ctrl+shift+z.
// Terminals with the kitty keyboard protocol send these for chords like ctrl+shift+z.
func chordFromUnknownCSI(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "?CSI[") || !strings.HasSuffix(raw, "]?") {
		return "", false
	}
	var b strings.Builder
	for _, f := range strings.Fields(raw[len("?CSI[") : len(raw)-len("]?")]) {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n > 255 {
			return "", false
		}
		b.WriteByte(byte(n))
	}
	seq := b.String()
	if !strings.HasSuffix(seq, "u") {
		return "", false
	}
	parts := strings.Split(strings.TrimSuffix(seq, "u"), ";")
	if len(parts) != 2 {
		return "", false
	}
	code, err1 := strconv.Atoi(parts[0])
	mods, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || code < 32 || code > 126 || mods < 1 {
		return "", false
	}
	bits := mods - 1
	var chord []string
	if bits&4 != 0 {
		chord = append(chord, "ctrl")
	}
	if bits&8 != 0 {
		chord = append(chord, "cmd")
	}
	if bits&2 != 0 {
		chord = append(chord, "alt")
	}
	if bits&1 != 0 {
		chord = append(chord, "shift")
	}
	chord = append(chord, strings.ToLower(string(rune(code))))
	return strings.Join(chord, "+"), true
}
