package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"kb-cli/internal/model"
)

// Storage keys, one JSON value each.
const (
	KeyBooks          = "books"
	KeyBookCategories = "bookCategories"
	KeySelectedBookID = "selectedBookId"
)

// Pairs is a map that serializes as an array of [key, value] pairs, sorted by key.
type Pairs[V any] map[string]V

func (p Pairs[V]) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]any{k, p[k]})
	}
	return json.Marshal(out)
}

func (p *Pairs[V]) UnmarshalJSON(b []byte) error {
	if isNullOrEmpty(b) {
		*p = Pairs[V]{}
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("pairs: %w", err)
	}
	out := make(Pairs[V], len(raw))
	for i, entry := range raw {
		var kv []json.RawMessage
		if err := json.Unmarshal(entry, &kv); err != nil {
			return fmt.Errorf("pairs[%d]: %w", i, err)
		}
		if len(kv) != 2 {
			return fmt.Errorf("pairs[%d]: expected [key, value], got %d elements", i, len(kv))
		}
		var k string
		if err := json.Unmarshal(kv[0], &k); err != nil {
			return fmt.Errorf("pairs[%d] key: %w", i, err)
		}
		var v V
		if err := json.Unmarshal(kv[1], &v); err != nil {
			return fmt.Errorf("pairs[%d] value: %w", i, err)
		}
		out[k] = v
	}
	*p = out
	return nil
}

// Snapshot is the persisted layout of a DB, keyed like the storage entries.
type Snapshot struct {
	Books          Pairs[model.Book]        `json:"books"`
	BookCategories Pairs[Pairs[model.Item]] `json:"bookCategories"`
	SelectedBookID string                   `json:"selectedBookId,omitempty"`
}

// SnapshotOf copies db into its persisted layout.
func SnapshotOf(db *DB) Snapshot {
	snap := Snapshot{
		Books:          Pairs[model.Book]{},
		BookCategories: Pairs[Pairs[model.Item]]{},
	}
	if db == nil {
		return snap
	}
	snap.SelectedBookID = db.SelectedBookID
	for id, b := range db.Books {
		if b != nil {
			snap.Books[id] = *b
		}
	}
	for bookID, items := range db.Items {
		m := Pairs[model.Item]{}
		for id, it := range items {
			if it != nil {
				m[id] = it.Clone()
			}
		}
		snap.BookCategories[bookID] = m
	}
	return snap
}

// DB rebuilds the in-memory mappings.
func (snap Snapshot) DB() *DB {
	db := NewDB()
	db.SelectedBookID = strings.TrimSpace(snap.SelectedBookID)
	for id, b := range snap.Books {
		cp := b
		db.Books[id] = &cp
	}
	for bookID, items := range snap.BookCategories {
		m := db.bookItems(bookID)
		for id, it := range items {
			cp := it.Clone()
			m[id] = &cp
		}
	}
	return db
}

func isNullOrEmpty(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	s := strings.TrimSpace(string(b))
	return s == "" || s == "null"
}
