// Package kb holds the application state shared by the CLI and the TUI: the loaded
// workspace, its mutator and the undo/redo history of the selected book.
package kb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kb-cli/internal/history"
	"kb-cli/internal/model"
	"kb-cli/internal/mutate"
	"kb-cli/internal/store"

	"github.com/sirupsen/logrus"
)

type Options struct {
	HistoryMaxSize int
	Log            logrus.FieldLogger
	// Notify receives transient user-facing messages (failed undo/redo).
	Notify func(msg string)
}

// Session is one open workspace. It is initialized by Open and torn down with the process;
// switching books resets its history.
type Session struct {
	Store   store.Store
	DB      *store.DB
	Mutator *mutate.Mutator
	History *history.Manager
	Log     logrus.FieldLogger

	err error
}

// Open loads the workspace at st.Dir and restores the persisted history.
func Open(ctx context.Context, st store.Store, opts Options) (*Session, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	db, err := st.LoadContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}

	s := &Session{Store: st, DB: db, Log: log}
	s.History = history.NewManager(opts.HistoryMaxSize, log)
	s.History.Notify = opts.Notify
	s.Mutator = mutate.New(db, func() error { return st.SaveContext(context.Background(), db) }, log)
	s.Mutator.Subscribe(s.onMutation)

	if err := s.restoreHistory(ctx); err != nil {
		log.WithError(err).Warn("kb: discarding unreadable history")
		s.History.Clear()
	}
	return s, nil
}

// SelectedBook returns the active book id ("" when none is selected).
func (s *Session) SelectedBook() string {
	return strings.TrimSpace(s.DB.SelectedBookID)
}

// SwitchBook makes bookID the active book. The history belongs to a single book and is
// cleared whenever the selection changes.
func (s *Session) SwitchBook(ctx context.Context, bookID string) error {
	bookID = strings.TrimSpace(bookID)
	if _, ok := s.DB.FindBook(bookID); !ok {
		return mutate.NotFoundError{Kind: "book", ID: bookID}
	}
	if s.SelectedBook() == bookID {
		return nil
	}
	s.DB.SelectedBookID = bookID
	s.History.Clear()
	if err := s.Store.SaveContext(ctx, s.DB); err != nil {
		return err
	}
	return s.saveHistory(ctx)
}

// Reload re-reads the workspace after another process changed it. The history is kept only
// if the selected book is unchanged.
func (s *Session) Reload(ctx context.Context) error {
	db, err := s.Store.LoadContext(ctx)
	if err != nil {
		return err
	}
	prev := s.SelectedBook()
	*s.DB = *db
	if s.SelectedBook() != prev {
		s.History.Clear()
		return nil
	}
	return s.restoreHistory(ctx)
}

// Undo reverts the latest action of the selected book and persists the result.
// It returns the reverted action's description, or "" when there was nothing to undo.
func (s *Session) Undo(ctx context.Context) (string, error) {
	return s.replay(ctx, "undo", s.History.Undo)
}

func (s *Session) Redo(ctx context.Context) (string, error) {
	return s.replay(ctx, "redo", s.History.Redo)
}

func (s *Session) replay(ctx context.Context, op string, fn func() (history.Action, error)) (string, error) {
	a, runErr := fn()
	if a == nil {
		return "", nil
	}
	if runErr == nil {
		if err := s.Store.SaveContext(ctx, s.DB); err != nil {
			return a.Description(), err
		}
		s.appendEvent(ctx, "history."+op, s.SelectedBook(), entityOf(a), map[string]any{"description": a.Description()})
	}
	if err := s.saveHistory(ctx); err != nil {
		return a.Description(), err
	}
	return a.Description(), runErr
}

// ClearHistory empties both stacks.
func (s *Session) ClearHistory(ctx context.Context) error {
	s.History.Clear()
	return s.saveHistory(ctx)
}

// Err returns and resets the first persistence error raised while handling a mutation.
func (s *Session) Err() error {
	err := s.err
	s.err = nil
	return err
}

func (s *Session) keep(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

func (s *Session) onMutation(mu mutate.Mutation) {
	ctx := context.Background()
	log := s.Log.WithFields(logrus.Fields{"kind": mu.Kind, "book": mu.BookID, "item": mu.ItemID})

	entity := mu.ItemID
	if entity == "" {
		entity = mu.BookID
	}
	s.appendEvent(ctx, mu.Kind, mu.BookID, entity, mu.Payload)

	if mu.Kind == mutate.KindBookDelete && s.SelectedBook() == "" {
		s.History.Clear()
		s.keep(s.saveHistory(ctx))
		return
	}
	if mu.BookID != s.SelectedBook() {
		log.Debug("kb: mutation outside the selected book is not recorded")
		return
	}
	a := actionFor(s.DB, mu)
	if a == nil {
		return
	}
	s.History.Record(a)
	s.keep(s.saveHistory(ctx))
}

func actionFor(t history.Target, mu mutate.Mutation) history.Action {
	first := func(xs []model.Item) (model.Item, bool) {
		if len(xs) == 0 {
			return model.Item{}, false
		}
		return xs[0], true
	}
	before, hasBefore := first(mu.Before)
	after, hasAfter := first(mu.After)

	switch mu.Kind {
	case mutate.KindItemCreate:
		return history.AddAction(t, mu.After)
	case mutate.KindItemDelete:
		return history.DeleteAction(t, mu.Before)
	}
	if !hasBefore || !hasAfter {
		return nil
	}
	switch mu.Kind {
	case mutate.KindItemMove:
		return history.MoveAction(t, before, after)
	case mutate.KindItemRename:
		return history.RenameAction(t, before, after)
	case mutate.KindItemSetStatus:
		to := after.Status
		if to == "" {
			to = "none"
		}
		return history.UpdateAction(t, fmt.Sprintf("set status of %s %q to %s", after.Type, after.Name, to), before, after)
	case mutate.KindItemContent:
		return history.UpdateAction(t, fmt.Sprintf("edited %s %q", after.Type, after.Name), before, after)
	case mutate.KindItemExpand:
		verb := "collapsed"
		if after.AutoExpand {
			verb = "expanded"
		}
		return history.UpdateAction(t, fmt.Sprintf("%s %s %q", verb, after.Type, after.Name), before, after)
	}
	return nil
}

func entityOf(a history.Action) string {
	r, ok := a.(history.Recorder)
	if !ok {
		return "history"
	}
	rec := r.Record()
	switch {
	case rec.ItemID != "":
		return rec.ItemID
	case len(rec.Items) > 0:
		return rec.Items[0].ID
	}
	return "history"
}

func (s *Session) appendEvent(ctx context.Context, typ, bookID, entityID string, payload any) {
	if payload == nil {
		payload = map[string]any{}
	}
	if err := s.Store.AppendEvent(ctx, typ, bookID, entityID, payload); err != nil {
		s.Log.WithError(err).WithField("type", typ).Warn("kb: append event")
		s.keep(err)
	}
}

func (s *Session) saveHistory(ctx context.Context) error {
	undo, redo := s.History.Stacks()
	u, err := history.Encode(undo)
	if err != nil {
		return err
	}
	r, err := history.Encode(redo)
	if err != nil {
		return err
	}
	return s.Store.SaveHistory(ctx, store.HistoryStacks{Undo: u, Redo: r})
}

var errForeignHistory = errors.New("history belongs to another book")

func (s *Session) restoreHistory(ctx context.Context) error {
	stacks, err := s.Store.LoadHistory(ctx)
	if err != nil {
		return err
	}
	undo, err := history.Decode(stacks.Undo, s.DB)
	if err != nil {
		return err
	}
	redo, err := history.Decode(stacks.Redo, s.DB)
	if err != nil {
		return err
	}
	book := s.SelectedBook()
	for _, a := range append(append([]history.Action(nil), undo...), redo...) {
		if r, ok := a.(history.Recorder); ok && r.Record().BookID != book {
			return errForeignHistory
		}
	}
	s.History.Restore(undo, redo)
	return nil
}
