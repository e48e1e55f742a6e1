// Package publish writes a book as a directory of markdown pages laid out by storage path.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"kb-cli/internal/store"
)

type WriteOptions struct {
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteBook writes <toDir>/<book-slug>/index.md plus one page per article and file.
// Items whose paths collide get their id appended to the file name.
func WriteBook(db *store.DB, bookID, toDir string, opt WriteOptions) (WriteResult, error) {
	if db == nil {
		return WriteResult{}, errors.New("missing db")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	if _, ok := db.FindBook(bookID); !ok {
		return WriteResult{}, errors.New("book not found: " + bookID)
	}
	root := filepath.Clean(toDir)
	bookDir := filepath.Join(root, store.BookSlug(db, bookID))
	indexPath := filepath.Join(bookDir, "index.md")

	pages := map[string]string{}
	used := map[string]bool{indexPath: true}
	var order []string
	for _, it := range db.ItemsOf(bookID) {
		if it.Type.IsContainer() {
			continue
		}
		out := pagePath(root, db, bookID, it.ID, "")
		if used[out] {
			out = pagePath(root, db, bookID, it.ID, "-"+it.ID)
		}
		used[out] = true
		pages[it.ID] = out
		order = append(order, it.ID)
	}

	index, err := RenderBookIndex(db, bookID, func(itemID string) string {
		rel, err := filepath.Rel(bookDir, pages[itemID])
		if err != nil {
			return pages[itemID]
		}
		return filepath.ToSlash(rel)
	})
	if err != nil {
		return WriteResult{}, err
	}
	if err := writeFile(indexPath, []byte(index), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	written := []string{indexPath}
	for _, id := range order {
		md, err := RenderItemMarkdown(db, bookID, id)
		if err != nil {
			return WriteResult{Written: written}, err
		}
		if err := writeFile(pages[id], []byte(md), opt.Overwrite); err != nil {
			return WriteResult{Written: written}, err
		}
		written = append(written, pages[id])
	}
	return WriteResult{Written: written}, nil
}

// WriteItem writes a single page at <toDir>/<storage path>.md.
func WriteItem(db *store.DB, bookID, itemID, toDir string, opt WriteOptions) (WriteResult, error) {
	if strings.TrimSpace(toDir) == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	md, err := RenderItemMarkdown(db, bookID, itemID)
	if err != nil {
		return WriteResult{}, err
	}
	out := pagePath(filepath.Clean(toDir), db, bookID, itemID, "")
	if err := writeFile(out, []byte(md), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{out}}, nil
}

func pagePath(root string, db *store.DB, bookID, itemID, suffix string) string {
	rel := strings.TrimSuffix(store.StoragePath(db, bookID, itemID), ".md") + suffix + ".md"
	return filepath.Join(root, filepath.FromSlash(rel))
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
