// Package history keeps the linear undo/redo stacks for item mutations.
package history

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

const DefaultMaxSize = 100

// Action is one reversible mutation.
type Action interface {
	Description() string
	Undo() error
	Redo() error
}

// Manager owns the undo and redo stacks. It is not safe for concurrent use; callers drive it
// from a single event loop.
type Manager struct {
	// MaxSize bounds the undo stack; the oldest entries are evicted first.
	MaxSize int
	Log     logrus.FieldLogger
	// Notify, when set, receives a short message for every failed undo/redo.
	Notify func(msg string)

	undo      []Action
	redo      []Action
	replaying bool
}

func NewManager(maxSize int, log logrus.FieldLogger) *Manager {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{MaxSize: maxSize, Log: log}
}

// Replaying reports whether an undo or redo callback is currently running.
func (m *Manager) Replaying() bool { return m.replaying }

// Record pushes a new forward action. It is ignored while replaying.
func (m *Manager) Record(a Action) {
	if a == nil || m.replaying {
		return
	}
	m.undo = append(m.undo, a)
	m.redo = nil
	m.trim()
	m.Log.WithField("action", a.Description()).Debug("history: recorded")
}

// Undo reverts the most recent action. It returns the action it attempted (nil when the stack
// is empty). A failing action is dropped from both stacks.
func (m *Manager) Undo() (Action, error) {
	if len(m.undo) == 0 {
		return nil, nil
	}
	a := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	if err := m.replay(a, a.Undo); err != nil {
		m.fail("undo", a, err)
		return a, err
	}
	m.redo = append(m.redo, a)
	return a, nil
}

// Redo reapplies the most recently undone action.
func (m *Manager) Redo() (Action, error) {
	if len(m.redo) == 0 {
		return nil, nil
	}
	a := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	if err := m.replay(a, a.Redo); err != nil {
		m.fail("redo", a, err)
		return a, err
	}
	m.undo = append(m.undo, a)
	m.trim()
	return a, nil
}

func (m *Manager) replay(a Action, fn func() error) (err error) {
	m.replaying = true
	defer func() { m.replaying = false }()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", a.Description(), r)
		}
	}()
	return fn()
}

func (m *Manager) fail(op string, a Action, err error) {
	m.Log.WithFields(logrus.Fields{"op": op, "action": a.Description()}).WithError(err).Warn("history: action failed")
	if m.Notify != nil {
		m.Notify(fmt.Sprintf("%s failed: %v", op, err))
	}
}

func (m *Manager) trim() {
	if m.MaxSize > 0 && len(m.undo) > m.MaxSize {
		drop := len(m.undo) - m.MaxSize
		m.undo = append([]Action(nil), m.undo[drop:]...)
	}
}

// Clear empties both stacks. Called when the active book changes.
func (m *Manager) Clear() {
	m.undo = nil
	m.redo = nil
}

func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// UndoEntries returns the undo stack descriptions, newest first.
func (m *Manager) UndoEntries() []string { return descriptions(m.undo) }

// RedoEntries returns the redo stack descriptions, newest first.
func (m *Manager) RedoEntries() []string { return descriptions(m.redo) }

func descriptions(stack []Action) []string {
	out := make([]string, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, stack[i].Description())
	}
	return out
}

// Stacks returns copies of both stacks, oldest first.
func (m *Manager) Stacks() (undo, redo []Action) {
	return append([]Action(nil), m.undo...), append([]Action(nil), m.redo...)
}

// Restore replaces both stacks (oldest first), e.g. with actions rebuilt from storage.
func (m *Manager) Restore(undo, redo []Action) {
	m.undo = append([]Action(nil), undo...)
	m.redo = append([]Action(nil), redo...)
	m.trim()
}
