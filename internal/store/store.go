package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"kb-cli/internal/model"
)

const (
	workspaceDirName = ".kb"
	sqliteFileName   = "kb.sqlite"
)

// DB is the in-memory application state: the book mapping plus one item mapping per book.
//
// Read operations on an unknown book return empty results; write operations create the
// book's item mapping on demand.
type DB struct {
	Version        int
	SelectedBookID string
	Books          map[string]*model.Book
	Items          map[string]map[string]*model.Item

	now func() time.Time
}

func NewDB() *DB {
	return &DB{
		Version: 1,
		Books:   map[string]*model.Book{},
		Items:   map[string]map[string]*model.Item{},
	}
}

// SetClock overrides the time source used for CreatedAt/UpdatedAt stamps (tests).
func (db *DB) SetClock(now func() time.Time) {
	db.now = now
}

func (db *DB) Now() time.Time {
	if db != nil && db.now != nil {
		return db.now().UTC()
	}
	return time.Now().UTC()
}

type Store struct {
	Dir string
}

func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, workspaceDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, workspaceDirName), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

// StatePath is the file watched for external changes.
func (s Store) StatePath() string {
	return s.sqlitePath()
}

func (s Store) Load() (*DB, error) {
	return s.LoadContext(context.Background())
}

func (s Store) LoadContext(ctx context.Context) (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	return s.loadLocalStorage(ctx)
}

func (s Store) Save(db *DB) error {
	return s.SaveContext(context.Background(), db)
}

func (s Store) SaveContext(ctx context.Context, db *DB) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	return s.saveLocalStorage(ctx, db)
}

func (db *DB) FindBook(id string) (*model.Book, bool) {
	if db == nil {
		return nil, false
	}
	b, ok := db.Books[strings.TrimSpace(id)]
	return b, ok && b != nil
}

// PutBook inserts or replaces a book and makes sure it has an item mapping.
func (db *DB) PutBook(b model.Book) {
	if db.Books == nil {
		db.Books = map[string]*model.Book{}
	}
	cp := b
	db.Books[b.ID] = &cp
	db.bookItems(b.ID)
}

// RemoveBook drops the book and its entire item mapping.
func (db *DB) RemoveBook(id string) {
	id = strings.TrimSpace(id)
	delete(db.Books, id)
	delete(db.Items, id)
	if db.SelectedBookID == id {
		db.SelectedBookID = ""
	}
}

// SortedBooks returns books ordered by name, then id.
func (db *DB) SortedBooks() []model.Book {
	if db == nil {
		return nil
	}
	out := make([]model.Book, 0, len(db.Books))
	for _, b := range db.Books {
		if b != nil {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (db *DB) bookItems(bookID string) map[string]*model.Item {
	if db.Items == nil {
		db.Items = map[string]map[string]*model.Item{}
	}
	m := db.Items[bookID]
	if m == nil {
		m = map[string]*model.Item{}
		db.Items[bookID] = m
	}
	return m
}

// GetItem returns the live record; callers may mutate it in place.
func (db *DB) GetItem(bookID, itemID string) (*model.Item, bool) {
	if db == nil {
		return nil, false
	}
	m := db.Items[strings.TrimSpace(bookID)]
	if m == nil {
		return nil, false
	}
	it, ok := m[strings.TrimSpace(itemID)]
	return it, ok && it != nil
}

// FindItem looks an item up across all books.
func (db *DB) FindItem(itemID string) (*model.Item, bool) {
	if db == nil {
		return nil, false
	}
	itemID = strings.TrimSpace(itemID)
	for _, m := range db.Items {
		if it, ok := m[itemID]; ok && it != nil {
			return it, true
		}
	}
	return nil, false
}

// SetItem inserts or overwrites an item and stamps UpdatedAt.
func (db *DB) SetItem(bookID string, it model.Item) {
	it.UpdatedAt = db.Now()
	db.PutItem(bookID, it)
}

// PutItem inserts a copy of it exactly as given.
func (db *DB) PutItem(bookID string, it model.Item) {
	cp := it.Clone()
	cp.BookID = bookID
	db.bookItems(bookID)[cp.ID] = &cp
}

// DeleteItem removes a single record. Children are left untouched.
func (db *DB) DeleteItem(bookID, itemID string) {
	if db == nil {
		return
	}
	m := db.Items[strings.TrimSpace(bookID)]
	if m == nil {
		return
	}
	delete(m, strings.TrimSpace(itemID))
}

// ItemsOf returns a copy of every item in the book, in render order.
func (db *DB) ItemsOf(bookID string) []model.Item {
	if db == nil {
		return []model.Item{}
	}
	m := db.Items[strings.TrimSpace(bookID)]
	out := make([]model.Item, 0, len(m))
	for _, it := range m {
		if it != nil {
			out = append(out, it.Clone())
		}
	}
	SortItems(out)
	return out
}

// Children returns the items whose parent equals parentID (nil = top level), in render order.
func (db *DB) Children(bookID string, parentID *string) []model.Item {
	out := []model.Item{}
	if db == nil {
		return out
	}
	bookID = strings.TrimSpace(bookID)
	for _, it := range db.Items[bookID] {
		if it == nil || it.BookID != bookID {
			continue
		}
		if !model.SameParent(it.ParentID, parentID) {
			continue
		}
		out = append(out, it.Clone())
	}
	SortItems(out)
	return out
}

// SortItems orders siblings by type rank, then name, then id.
func SortItems(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return compareItems(items[i], items[j]) < 0
	})
}

func compareItems(a, b model.Item) int {
	if ra, rb := a.Type.Rank(), b.Type.Rank(); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	if a.Name != b.Name {
		if a.Name < b.Name {
			return -1
		}
		return 1
	}
	if a.ID < b.ID {
		return -1
	}
	if a.ID > b.ID {
		return 1
	}
	return 0
}

// Ancestors returns the parent chain of itemID, nearest first. It stops at the first
// missing parent or repeated id, so it terminates even on corrupted data.
func (db *DB) Ancestors(bookID, itemID string) []string {
	var out []string
	it, ok := db.GetItem(bookID, itemID)
	if !ok {
		return out
	}
	seen := map[string]bool{it.ID: true}
	for it.ParentID != nil {
		pid := it.Parent()
		if pid == "" || seen[pid] {
			break
		}
		seen[pid] = true
		out = append(out, pid)
		next, ok := db.GetItem(bookID, pid)
		if !ok {
			break
		}
		it = next
	}
	return out
}

// IsAncestor reports whether ancestorID appears in itemID's parent chain.
func (db *DB) IsAncestor(bookID, ancestorID, itemID string) bool {
	ancestorID = strings.TrimSpace(ancestorID)
	for _, id := range db.Ancestors(bookID, itemID) {
		if id == ancestorID {
			return true
		}
	}
	return false
}

// Descendants returns every item below itemID (depth-first, render order).
func (db *DB) Descendants(bookID, itemID string) []model.Item {
	out := []model.Item{}
	seen := map[string]bool{strings.TrimSpace(itemID): true}
	var walk func(id string)
	walk = func(id string) {
		pid := id
		for _, ch := range db.Children(bookID, &pid) {
			if seen[ch.ID] {
				continue
			}
			seen[ch.ID] = true
			out = append(out, ch)
			walk(ch.ID)
		}
	}
	walk(strings.TrimSpace(itemID))
	return out
}

// Path returns the item names from the top level down to itemID.
func (db *DB) Path(bookID, itemID string) []string {
	it, ok := db.GetItem(bookID, itemID)
	if !ok {
		return nil
	}
	anc := db.Ancestors(bookID, itemID)
	out := make([]string, 0, len(anc)+1)
	for i := len(anc) - 1; i >= 0; i-- {
		if p, ok := db.GetItem(bookID, anc[i]); ok {
			out = append(out, p.Name)
		}
	}
	return append(out, it.Name)
}
