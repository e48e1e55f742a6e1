package tui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

type editorDoneMsg struct {
	itemID string
	path   string
	before string
	err    error
}

func editorCommand() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if args := splitShellWords(os.Getenv(env)); len(args) > 0 {
			return args
		}
	}
	return []string{"vi"}
}

// editContent suspends the program and opens the item's content in the user's editor.
func (m *appModel) editContent(r treeRow) tea.Cmd {
	f, err := os.CreateTemp("", "kb-*.md")
	if err != nil {
		return m.fail(err)
	}
	path := f.Name()
	_, werr := f.WriteString(r.item.Content)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(path)
		return m.fail(werr)
	}

	args := editorCommand()
	c := exec.Command(args[0], append(args[1:], path)...)
	id, before := r.ID, r.item.Content
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return editorDoneMsg{itemID: id, path: path, before: before, err: err}
	})
}

func (m *appModel) applyEditorResult(msg editorDoneMsg) tea.Cmd {
	defer func() { _ = os.Remove(msg.path) }()
	if msg.err != nil {
		return m.setFlash("editor failed: "+msg.err.Error(), true)
	}
	b, err := os.ReadFile(msg.path)
	if err != nil {
		return m.fail(err)
	}
	after := string(b)
	if after == msg.before {
		return m.setFlash(fmt.Sprintf("no changes from %s", editorCommand()[0]), false)
	}
	if _, err := m.session.Mutator.SetContent(m.session.SelectedBook(), msg.itemID, after); err != nil {
		return m.fail(err)
	}
	return m.afterMutation("content saved")
}

// splitShellWords splits an $EDITOR value into argv. Single quotes are literal; double quotes
// group words and allow backslash escapes.
func splitShellWords(s string) []string {
	var out []string
	var word strings.Builder
	inWord := false
	var quote rune
	escaped := false

	for _, r := range s {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '\'' || r == '"'):
			quote = r
			inWord = true
		case quote == 0 && unicode.IsSpace(r):
			if inWord {
				out = append(out, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		out = append(out, word.String())
	}
	return out
}
