package store

import (
	"regexp"
	"strings"
)

var reUnsafePathChars = regexp.MustCompile(`[^a-z0-9._-]+`)

func slugifyPathSegment(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = reUnsafePathChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "untitled"
	}
	return s
}

// StoragePath returns the slash-separated location of an item: <book>/<ancestors...>/<item>.
// Each segment is a slug of the corresponding name. Unknown items yield "".
func StoragePath(db *DB, bookID, itemID string) string {
	names := db.Path(bookID, itemID)
	if len(names) == 0 {
		return ""
	}
	segs := make([]string, 0, len(names)+1)
	segs = append(segs, BookSlug(db, bookID))
	for _, n := range names {
		segs = append(segs, slugifyPathSegment(n))
	}
	return strings.Join(segs, "/")
}

// BookSlug is the first segment of every storage path in the book.
func BookSlug(db *DB, bookID string) string {
	if b, ok := db.FindBook(bookID); ok {
		return slugifyPathSegment(b.Name)
	}
	return slugifyPathSegment(bookID)
}
