package mutate

import (
	"strings"

	"kb-cli/internal/model"
)

func parentPayload(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// Move reparents itemID relative to targetID.
//
// Container targets (category, folder) always receive the item as a child, whatever the
// position. Leaf targets make the item a sibling of the target; "inside" a leaf is treated as
// "after". targetType overrides the stored target type when valid, matching the row attributes
// the drop came from. Unknown book, item or target is a no-op.
func (m *Mutator) Move(bookID, itemID, targetID string, pos model.Position, itemType, targetType model.ItemType) (Result, error) {
	bookID = strings.TrimSpace(bookID)
	itemID = strings.TrimSpace(itemID)
	targetID = strings.TrimSpace(targetID)

	it, ok := m.DB.GetItem(bookID, itemID)
	if !ok {
		return Result{}, nil
	}
	target, ok := m.DB.GetItem(bookID, targetID)
	if !ok {
		return Result{Item: it.Clone()}, nil
	}
	if itemID == targetID {
		return Result{}, ErrCycle
	}

	tt := target.Type
	if targetType.Valid() {
		tt = targetType
	}

	var next *string
	if tt.IsContainer() {
		next = model.StrPtr(target.ID)
	} else {
		next = target.Clone().ParentID
	}
	return m.reparent(bookID, it, next, map[string]any{
		"target":   targetID,
		"position": string(pos),
	})
}

// MoveToEnd handles a drop on empty space: categories go to the top level, everything else
// goes into the most recently created category outside the item's own subtree (or the top
// level when there is none).
func (m *Mutator) MoveToEnd(bookID, itemID string, itemType model.ItemType) (Result, error) {
	bookID = strings.TrimSpace(bookID)
	it, ok := m.DB.GetItem(bookID, strings.TrimSpace(itemID))
	if !ok {
		return Result{}, nil
	}
	typ := it.Type
	if itemType.Valid() {
		typ = itemType
	}

	var next *string
	if typ != model.ItemTypeCategory {
		if last, ok := m.lastCategory(bookID, it.ID); ok {
			next = model.StrPtr(last.ID)
		}
	}
	return m.reparent(bookID, it, next, map[string]any{"position": "end"})
}

func (m *Mutator) lastCategory(bookID, movingID string) (model.Item, bool) {
	var best model.Item
	found := false
	for _, c := range m.DB.ItemsOf(bookID) {
		if c.Type != model.ItemTypeCategory || c.ID == movingID || m.DB.IsAncestor(bookID, movingID, c.ID) {
			continue
		}
		if !found || c.CreatedAt.After(best.CreatedAt) || (c.CreatedAt.Equal(best.CreatedAt) && c.ID > best.ID) {
			best = c
			found = true
		}
	}
	return best, found
}

func (m *Mutator) reparent(bookID string, it *model.Item, next *string, payload map[string]any) (Result, error) {
	if next != nil {
		pid := *next
		if pid == it.ID || m.DB.IsAncestor(bookID, it.ID, pid) {
			return Result{Item: it.Clone()}, ErrCycle
		}
	}
	if model.SameParent(it.ParentID, next) {
		return Result{Item: it.Clone(), Changed: false}, nil
	}

	before := it.Clone()
	it.ParentID = next
	it.UpdatedAt = m.DB.Now()

	payload["from"] = parentPayload(before.ParentID)
	payload["to"] = parentPayload(next)
	res := Result{Item: it.Clone(), Changed: true, EventPayload: payload}
	return m.finish(res, Mutation{
		Kind:    KindItemMove,
		BookID:  bookID,
		ItemID:  it.ID,
		Before:  one(before),
		After:   one(*it),
		Payload: payload,
	})
}
