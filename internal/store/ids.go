package store

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"

	"kb-cli/internal/model"
)

// newRandomID returns prefix-<suffix> where suffix is n chars of lowercase base32.
func newRandomID(prefix string, n int) (string, error) {
	var b [10]byte // 80 bits -> up to 16 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	if n > 0 && n < len(suffix) {
		suffix = suffix[:n]
	}
	return prefix + "-" + suffix, nil
}

// IDPrefix is the readable prefix used for each item type.
func IDPrefix(t model.ItemType) string {
	switch t {
	case model.ItemTypeCategory:
		return "cat"
	case model.ItemTypeFolder:
		return "fld"
	case model.ItemTypeArticle:
		return "art"
	case model.ItemTypeFile:
		return "file"
	default:
		return "item"
	}
}

// NextID returns a fresh id that is not used by any book or item in db.
// Short ids are tried first and grow on repeated collisions.
func (db *DB) NextID(prefix string) string {
	for _, ln := range []int{5, 6, 8, 12} {
		for i := 0; i < 50; i++ {
			id, err := newRandomID(prefix, ln)
			if err != nil {
				break
			}
			if !db.idExists(id) {
				return id
			}
		}
	}
	// crypto/rand failed or the space is saturated; fall back to a counter.
	n := 1
	for {
		id := fmt.Sprintf("%s-%d", prefix, n)
		if !db.idExists(id) {
			return id
		}
		n++
	}
}

func (db *DB) idExists(id string) bool {
	if db == nil {
		return false
	}
	if _, ok := db.Books[id]; ok {
		return true
	}
	for _, m := range db.Items {
		if _, ok := m[id]; ok {
			return true
		}
	}
	return false
}
