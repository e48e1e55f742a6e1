package mutate

import (
	"fmt"
	"strings"

	"kb-cli/internal/model"
	"kb-cli/internal/store"
)

type AddItemInput struct {
	Type     model.ItemType
	Name     string
	ParentID *string
	Status   string
	Content  string
	MimeType string
	Size     int64
}

// AddItem creates an item under ParentID (nil = top level). The parent must be a container
// in the same book.
func (m *Mutator) AddItem(bookID string, in AddItemInput) (Result, error) {
	bookID = strings.TrimSpace(bookID)
	if _, ok := m.DB.FindBook(bookID); !ok {
		return Result{}, NotFoundError{Kind: "book", ID: bookID}
	}
	if !in.Type.Valid() {
		return Result{}, fmt.Errorf("invalid item type: %q", in.Type)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Result{}, ErrEmptyName
	}
	status, err := model.ParseStatus(in.Status)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}

	var parent *string
	if in.ParentID != nil && strings.TrimSpace(*in.ParentID) != "" {
		pid := strings.TrimSpace(*in.ParentID)
		p, ok := m.DB.GetItem(bookID, pid)
		if !ok {
			return Result{}, NotFoundError{Kind: "parent", ID: pid}
		}
		if !p.Type.IsContainer() {
			return Result{}, ErrNotContainer
		}
		parent = model.StrPtr(pid)
	}

	now := m.DB.Now()
	it := model.Item{
		ID:        m.DB.NextID(store.IDPrefix(in.Type)),
		Type:      in.Type,
		Name:      name,
		BookID:    bookID,
		ParentID:  parent,
		Status:    status,
		Content:   in.Content,
		MimeType:  strings.TrimSpace(in.MimeType),
		Size:      in.Size,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Type.IsContainer() {
		it.Content = ""
	}
	m.DB.PutItem(bookID, it)

	payload := map[string]any{"type": string(it.Type), "name": it.Name, "parentId": parentPayload(parent)}
	return m.finish(Result{Item: it.Clone(), Changed: true, EventPayload: payload}, Mutation{
		Kind:    KindItemCreate,
		BookID:  bookID,
		ItemID:  it.ID,
		After:   one(it),
		Payload: payload,
	})
}

// DuplicateItem copies an item and its whole subtree with fresh ids. The copy sits next to the
// original and its name gets a " (copy)" suffix.
func (m *Mutator) DuplicateItem(bookID, itemID string) (Result, error) {
	bookID = strings.TrimSpace(bookID)
	src, ok := m.DB.GetItem(bookID, strings.TrimSpace(itemID))
	if !ok {
		return Result{}, nil
	}

	now := m.DB.Now()
	ids := map[string]string{}
	copyOf := func(orig model.Item) model.Item {
		cp := orig.Clone()
		cp.ID = m.DB.NextID(store.IDPrefix(orig.Type))
		cp.CreatedAt = now
		cp.UpdatedAt = now
		ids[orig.ID] = cp.ID
		if pid := orig.Parent(); pid != "" {
			if mapped, ok := ids[pid]; ok {
				cp.ParentID = model.StrPtr(mapped)
			}
		}
		// Reserve the id before the next NextID call.
		m.DB.PutItem(bookID, cp)
		return cp
	}

	root := copyOf(*src)
	root.Name = src.Name + " (copy)"
	m.DB.PutItem(bookID, root)
	created := []model.Item{root}
	for _, d := range m.DB.Descendants(bookID, src.ID) {
		created = append(created, copyOf(d))
	}

	payload := map[string]any{"source": src.ID, "count": len(created)}
	return m.finish(Result{Item: root.Clone(), Changed: true, EventPayload: payload}, Mutation{
		Kind:    KindItemCreate,
		BookID:  bookID,
		ItemID:  root.ID,
		After:   created,
		Payload: payload,
	})
}

func (m *Mutator) RenameItem(bookID, itemID, name string) (Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, ErrEmptyName
	}
	return m.update(bookID, itemID, KindItemRename, func(it *model.Item) (map[string]any, error) {
		if it.Name == name {
			return nil, nil
		}
		prev := it.Name
		it.Name = name
		return map[string]any{"from": prev, "to": name}, nil
	})
}

func (m *Mutator) SetStatus(bookID, itemID, status string) (Result, error) {
	next, err := model.ParseStatus(status)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}
	return m.update(bookID, itemID, KindItemSetStatus, func(it *model.Item) (map[string]any, error) {
		if it.Type != model.ItemTypeArticle && next != "" {
			return nil, fmt.Errorf("%w: only articles have a status", ErrInvalidStatus)
		}
		if it.Status == next {
			return nil, nil
		}
		prev := it.Status
		it.Status = next
		return map[string]any{"from": prev, "to": next}, nil
	})
}

func (m *Mutator) SetContent(bookID, itemID, content string) (Result, error) {
	return m.update(bookID, itemID, KindItemContent, func(it *model.Item) (map[string]any, error) {
		if it.Type.IsContainer() {
			return nil, ErrNoContent
		}
		if it.Content == content {
			return nil, nil
		}
		it.Content = content
		return map[string]any{"bytes": len(content)}, nil
	})
}

func (m *Mutator) SetAutoExpand(bookID, itemID string, expand bool) (Result, error) {
	return m.update(bookID, itemID, KindItemExpand, func(it *model.Item) (map[string]any, error) {
		if !it.Type.IsContainer() {
			return nil, ErrNotContainer
		}
		if it.AutoExpand == expand {
			return nil, nil
		}
		it.AutoExpand = expand
		return map[string]any{"autoExpand": expand}, nil
	})
}

// update applies fn to a copy of the item. fn returns a nil payload when nothing changed.
func (m *Mutator) update(bookID, itemID, kind string, fn func(it *model.Item) (map[string]any, error)) (Result, error) {
	bookID = strings.TrimSpace(bookID)
	live, ok := m.DB.GetItem(bookID, strings.TrimSpace(itemID))
	if !ok {
		return Result{}, nil
	}
	before := live.Clone()
	next := live.Clone()
	payload, err := fn(&next)
	if err != nil {
		return Result{Item: before}, err
	}
	if payload == nil {
		return Result{Item: before, Changed: false}, nil
	}
	m.DB.SetItem(bookID, next)
	after, _ := m.DB.GetItem(bookID, next.ID)

	return m.finish(Result{Item: after.Clone(), Changed: true, EventPayload: payload}, Mutation{
		Kind:    kind,
		BookID:  bookID,
		ItemID:  after.ID,
		Before:  one(before),
		After:   one(*after),
		Payload: payload,
	})
}

// DeleteItem removes an item together with its subtree. Before lists the item first, then its
// descendants in depth-first order.
func (m *Mutator) DeleteItem(bookID, itemID string) (Result, error) {
	bookID = strings.TrimSpace(bookID)
	it, ok := m.DB.GetItem(bookID, strings.TrimSpace(itemID))
	if !ok {
		return Result{}, nil
	}
	removed := append([]model.Item{it.Clone()}, m.DB.Descendants(bookID, it.ID)...)
	for i := len(removed) - 1; i >= 0; i-- {
		m.DB.DeleteItem(bookID, removed[i].ID)
	}

	payload := map[string]any{"count": len(removed)}
	return m.finish(Result{Item: removed[0], Changed: true, EventPayload: payload}, Mutation{
		Kind:    KindItemDelete,
		BookID:  bookID,
		ItemID:  removed[0].ID,
		Before:  removed,
		Payload: payload,
	})
}
