package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// ExportFile writes db to path in the persisted [key, value] layout.
func ExportFile(db *DB, path string) error {
	b, err := json.MarshalIndent(SnapshotOf(db), "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, append(b, '\n'), 0o644)
}

// ImportFile reads a file written by ExportFile.
func ImportFile(path string) (*DB, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	db := snap.DB()
	for bookID, items := range db.Items {
		for _, it := range items {
			if it.BookID == "" {
				it.BookID = bookID
			}
		}
	}
	return db, nil
}
