package history

import (
	"fmt"
	"time"

	"kb-cli/internal/model"
)

// Target is the item storage the actions replay against. *store.DB satisfies it.
type Target interface {
	GetItem(bookID, itemID string) (*model.Item, bool)
	PutItem(bookID string, it model.Item)
	DeleteItem(bookID, itemID string)
}

// Kinds name the persisted action types.
const (
	KindMove   = "move"
	KindAdd    = "add"
	KindDelete = "delete"
	KindRename = "rename"
	KindUpdate = "update"
)

func label(it model.Item) string {
	return fmt.Sprintf("%s %q", it.Type, it.Name)
}

// moveAction re-reads the live item by id; concurrent edits to other fields survive.
type moveAction struct {
	t                      Target
	desc                   string
	bookID, itemID         string
	oldParent, newParent   *string
	oldUpdated, newUpdated time.Time
}

// MoveAction records a reparenting from before.ParentID to after.ParentID.
func MoveAction(t Target, before, after model.Item) Action {
	return &moveAction{
		t:          t,
		desc:       fmt.Sprintf("moved %s", label(after)),
		bookID:     after.BookID,
		itemID:     after.ID,
		oldParent:  before.Clone().ParentID,
		newParent:  after.Clone().ParentID,
		oldUpdated: before.UpdatedAt,
		newUpdated: after.UpdatedAt,
	}
}

func (a *moveAction) Description() string { return a.desc }
func (a *moveAction) Undo() error         { return a.apply(a.oldParent, a.oldUpdated) }
func (a *moveAction) Redo() error         { return a.apply(a.newParent, a.newUpdated) }

func (a *moveAction) apply(parent *string, updated time.Time) error {
	live, ok := a.t.GetItem(a.bookID, a.itemID)
	if !ok {
		return nil
	}
	it := live.Clone()
	if parent != nil {
		it.ParentID = model.StrPtr(*parent)
	} else {
		it.ParentID = nil
	}
	it.UpdatedAt = updated
	a.t.PutItem(a.bookID, it)
	return nil
}

func (a *moveAction) Record() Record {
	return Record{
		Kind:         KindMove,
		Description:  a.desc,
		BookID:       a.bookID,
		ItemID:       a.itemID,
		OldParentID:  a.oldParent,
		NewParentID:  a.newParent,
		OldUpdatedAt: a.oldUpdated,
		NewUpdatedAt: a.newUpdated,
	}
}

// snapshotAction holds deep copies of a subtree. Added items are removed on undo, deleted
// items are reinserted exactly as captured.
type snapshotAction struct {
	t      Target
	kind   string
	desc   string
	bookID string
	items  []model.Item
}

func cloneItems(items []model.Item) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		out = append(out, it.Clone())
	}
	return out
}

func subtreeLabel(verb string, items []model.Item) string {
	desc := fmt.Sprintf("%s %s", verb, label(items[0]))
	switch n := len(items) - 1; {
	case n == 1:
		desc += " and 1 child"
	case n > 1:
		desc += fmt.Sprintf(" and %d children", n)
	}
	return desc
}

// AddAction records the creation of items; items[0] is the root of the added subtree.
func AddAction(t Target, items []model.Item) Action {
	if len(items) == 0 {
		return nil
	}
	return &snapshotAction{t: t, kind: KindAdd, desc: subtreeLabel("added", items), bookID: items[0].BookID, items: cloneItems(items)}
}

// DeleteAction records the removal of items; items[0] is the root of the removed subtree.
func DeleteAction(t Target, items []model.Item) Action {
	if len(items) == 0 {
		return nil
	}
	return &snapshotAction{t: t, kind: KindDelete, desc: subtreeLabel("deleted", items), bookID: items[0].BookID, items: cloneItems(items)}
}

func (a *snapshotAction) Description() string { return a.desc }

func (a *snapshotAction) Undo() error {
	if a.kind == KindAdd {
		a.remove()
	} else {
		a.restore()
	}
	return nil
}

func (a *snapshotAction) Redo() error {
	if a.kind == KindAdd {
		a.restore()
	} else {
		a.remove()
	}
	return nil
}

func (a *snapshotAction) restore() {
	for _, it := range a.items {
		a.t.PutItem(a.bookID, it.Clone())
	}
}

func (a *snapshotAction) remove() {
	for i := len(a.items) - 1; i >= 0; i-- {
		a.t.DeleteItem(a.bookID, a.items[i].ID)
	}
}

func (a *snapshotAction) Record() Record {
	return Record{Kind: a.kind, Description: a.desc, BookID: a.bookID, Items: cloneItems(a.items)}
}

type renameAction struct {
	t                      Target
	desc                   string
	bookID, itemID         string
	oldName, newName       string
	oldUpdated, newUpdated time.Time
}

// RenameAction records a name change. Like moves, it re-reads the live item by id.
func RenameAction(t Target, before, after model.Item) Action {
	return &renameAction{
		t:          t,
		desc:       fmt.Sprintf("renamed %s %q to %q", after.Type, before.Name, after.Name),
		bookID:     after.BookID,
		itemID:     after.ID,
		oldName:    before.Name,
		newName:    after.Name,
		oldUpdated: before.UpdatedAt,
		newUpdated: after.UpdatedAt,
	}
}

func (a *renameAction) Description() string { return a.desc }
func (a *renameAction) Undo() error         { return a.apply(a.oldName, a.oldUpdated) }
func (a *renameAction) Redo() error         { return a.apply(a.newName, a.newUpdated) }

func (a *renameAction) apply(name string, updated time.Time) error {
	live, ok := a.t.GetItem(a.bookID, a.itemID)
	if !ok {
		return nil
	}
	it := live.Clone()
	it.Name = name
	it.UpdatedAt = updated
	a.t.PutItem(a.bookID, it)
	return nil
}

func (a *renameAction) Record() Record {
	return Record{
		Kind:         KindRename,
		Description:  a.desc,
		BookID:       a.bookID,
		ItemID:       a.itemID,
		OldName:      a.oldName,
		NewName:      a.newName,
		OldUpdatedAt: a.oldUpdated,
		NewUpdatedAt: a.newUpdated,
	}
}

// updateAction swaps whole-item snapshots (status, content, expand state).
type updateAction struct {
	t             Target
	desc          string
	before, after model.Item
}

func UpdateAction(t Target, description string, before, after model.Item) Action {
	return &updateAction{t: t, desc: description, before: before.Clone(), after: after.Clone()}
}

func (a *updateAction) Description() string { return a.desc }
func (a *updateAction) Undo() error         { return a.apply(a.before) }
func (a *updateAction) Redo() error         { return a.apply(a.after) }

func (a *updateAction) apply(it model.Item) error {
	if _, ok := a.t.GetItem(it.BookID, it.ID); !ok {
		return nil
	}
	a.t.PutItem(it.BookID, it.Clone())
	return nil
}

func (a *updateAction) Record() Record {
	b, af := a.before.Clone(), a.after.Clone()
	return Record{Kind: KindUpdate, Description: a.desc, BookID: a.after.BookID, ItemID: a.after.ID, Before: &b, After: &af}
}
