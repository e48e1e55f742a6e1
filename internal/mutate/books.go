package mutate

import (
	"strings"

	"kb-cli/internal/model"
)

type BookResult struct {
	Book    model.Book
	Changed bool
}

func (m *Mutator) AddBook(name, description string) (BookResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return BookResult{}, ErrEmptyName
	}
	now := m.DB.Now()
	b := model.Book{
		ID:          m.DB.NextID("book"),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	prevSel := m.DB.SelectedBookID
	m.DB.PutBook(b)
	if strings.TrimSpace(m.DB.SelectedBookID) == "" {
		m.DB.SelectedBookID = b.ID
	}
	err := m.commitOr(Mutation{
		Kind:    KindBookCreate,
		BookID:  b.ID,
		Payload: map[string]any{"name": b.Name},
	}, func() {
		m.DB.RemoveBook(b.ID)
		m.DB.SelectedBookID = prevSel
	})
	if err != nil {
		return BookResult{}, err
	}
	return BookResult{Book: b, Changed: true}, nil
}

func (m *Mutator) RenameBook(bookID, name, description string) (BookResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return BookResult{}, ErrEmptyName
	}
	b, ok := m.DB.FindBook(strings.TrimSpace(bookID))
	if !ok {
		return BookResult{}, NotFoundError{Kind: "book", ID: bookID}
	}
	description = strings.TrimSpace(description)
	if b.Name == name && (description == "" || b.Description == description) {
		return BookResult{Book: *b}, nil
	}
	before := *b
	b.Name = name
	if description != "" {
		b.Description = description
	}
	b.UpdatedAt = m.DB.Now()
	err := m.commitOr(Mutation{
		Kind:    KindBookRename,
		BookID:  b.ID,
		Payload: map[string]any{"from": before.Name, "to": b.Name},
	}, func() { *b = before })
	if err != nil {
		return BookResult{Book: before}, err
	}
	return BookResult{Book: *b, Changed: true}, nil
}

// DeleteBook removes a book and all of its items.
func (m *Mutator) DeleteBook(bookID string) (BookResult, error) {
	b, ok := m.DB.FindBook(strings.TrimSpace(bookID))
	if !ok {
		return BookResult{}, NotFoundError{Kind: "book", ID: bookID}
	}
	gone := *b
	items := m.DB.ItemsOf(gone.ID)
	prevSel := m.DB.SelectedBookID
	m.DB.RemoveBook(gone.ID)
	err := m.commitOr(Mutation{
		Kind:    KindBookDelete,
		BookID:  gone.ID,
		Payload: map[string]any{"name": gone.Name, "items": len(items)},
	}, func() {
		m.DB.PutBook(gone)
		for _, it := range items {
			m.DB.PutItem(gone.ID, it)
		}
		m.DB.SelectedBookID = prevSel
	})
	if err != nil {
		return BookResult{}, err
	}
	return BookResult{Book: gone, Changed: true}, nil
}
