package kb

import (
	"context"
	"strings"
)

type Shortcut int

const (
	ShortcutNone Shortcut = iota
	ShortcutUndo
	ShortcutRedo
)

func (s Shortcut) String() string {
	switch s {
	case ShortcutUndo:
		return "undo"
	case ShortcutRedo:
		return "redo"
	default:
		return "none"
	}
}

// ShortcutFor maps a key chord such as "ctrl+z" or "Cmd+Shift+Z" to an action.
// Ctrl and Cmd (alias super, meta) are interchangeable; modifier order does not matter.
func ShortcutFor(chord string) Shortcut {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(chord)), "+")
	if len(parts) < 2 {
		return ShortcutNone
	}
	key := parts[len(parts)-1]
	primary, shift := false, false
	for _, m := range parts[:len(parts)-1] {
		switch strings.TrimSpace(m) {
		case "ctrl", "control", "cmd", "command", "super", "meta":
			primary = true
		case "shift":
			shift = true
		default:
			return ShortcutNone
		}
	}
	if !primary {
		return ShortcutNone
	}
	switch {
	case key == "z" && !shift:
		return ShortcutUndo
	case key == "z" && shift, key == "y" && !shift:
		return ShortcutRedo
	}
	return ShortcutNone
}

// HandleShortcut runs the undo or redo bound to chord. handled is false for unbound chords.
func (s *Session) HandleShortcut(ctx context.Context, chord string) (desc string, handled bool, err error) {
	switch ShortcutFor(chord) {
	case ShortcutUndo:
		desc, err = s.Undo(ctx)
		return desc, true, err
	case ShortcutRedo:
		desc, err = s.Redo(ctx)
		return desc, true, err
	}
	return "", false, nil
}
