package mutate

import (
	"kb-cli/internal/model"
	"kb-cli/internal/store"

	"github.com/sirupsen/logrus"
)

// Mutation kinds, also used as event types.
const (
	KindBookCreate    = "book.create"
	KindBookRename    = "book.rename"
	KindBookDelete    = "book.delete"
	KindItemCreate    = "item.create"
	KindItemMove      = "item.move"
	KindItemRename    = "item.rename"
	KindItemDelete    = "item.delete"
	KindItemSetStatus = "item.set_status"
	KindItemContent   = "item.set_content"
	KindItemExpand    = "item.set_auto_expand"
)

// Mutation describes one committed change. Before and After hold deep copies of the affected
// items: a created subtree has only After, a deleted subtree only Before, and edits of a single
// item carry one entry on each side.
type Mutation struct {
	Kind    string
	BookID  string
	ItemID  string
	Before  []model.Item
	After   []model.Item
	Payload map[string]any
}

type Result struct {
	Item         model.Item
	Changed      bool
	EventPayload map[string]any
}

// Mutator applies hierarchy changes to a DB. After every change it calls Persist and then
// notifies subscribers in registration order.
type Mutator struct {
	DB      *store.DB
	Persist func() error
	Log     logrus.FieldLogger

	subs []func(Mutation)
}

func New(db *store.DB, persist func() error, log logrus.FieldLogger) *Mutator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Mutator{DB: db, Persist: persist, Log: log}
}

// Subscribe registers fn for every committed mutation. The returned func removes it.
func (m *Mutator) Subscribe(fn func(Mutation)) func() {
	m.subs = append(m.subs, fn)
	idx := len(m.subs) - 1
	return func() {
		if idx < len(m.subs) {
			m.subs[idx] = nil
		}
	}
}

func (m *Mutator) commit(mu Mutation) error {
	return m.commitOr(mu, func() { m.restore(mu) })
}

// commitOr persists the change and notifies subscribers. When Persist fails, rollback puts the
// DB back to its last saved state and nobody is notified.
func (m *Mutator) commitOr(mu Mutation, rollback func()) error {
	log := m.Log.WithFields(logrus.Fields{"kind": mu.Kind, "book": mu.BookID, "item": mu.ItemID})
	log.Debug("mutate: commit")
	if m.Persist != nil {
		if err := m.Persist(); err != nil {
			rollback()
			log.WithError(err).Warn("mutate: persist failed, change rolled back")
			return err
		}
	}
	for _, fn := range m.subs {
		if fn != nil {
			fn(mu)
		}
	}
	return nil
}

// finish commits mu and returns res. A failed commit reports no change.
func (m *Mutator) finish(res Result, mu Mutation) (Result, error) {
	if err := m.commit(mu); err != nil {
		out := Result{}
		if len(mu.Before) > 0 {
			out.Item = mu.Before[0].Clone()
		}
		return out, err
	}
	return res, nil
}

// restore reverts an item mutation from its snapshots.
func (m *Mutator) restore(mu Mutation) {
	for _, it := range mu.After {
		m.DB.DeleteItem(mu.BookID, it.ID)
	}
	for _, it := range mu.Before {
		m.DB.PutItem(mu.BookID, it)
	}
}

func one(it model.Item) []model.Item { return []model.Item{it.Clone()} }
