package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// loadLocalStorage reads the state keys from the local_storage table.
// A workspace with no stored keys yields an empty DB.
func (s Store) loadLocalStorage(ctx context.Context) (*DB, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	raw, err := readLocalStorage(ctx, db)
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if v, ok := raw[KeyBooks]; ok {
		if err := json.Unmarshal([]byte(v), &snap.Books); err != nil {
			return nil, fmt.Errorf("decode %s: %w", KeyBooks, err)
		}
	}
	if v, ok := raw[KeyBookCategories]; ok {
		if err := json.Unmarshal([]byte(v), &snap.BookCategories); err != nil {
			return nil, fmt.Errorf("decode %s: %w", KeyBookCategories, err)
		}
	}
	if v, ok := raw[KeySelectedBookID]; ok {
		// Best-effort: a corrupted selection is not worth failing the load over.
		_ = json.Unmarshal([]byte(v), &snap.SelectedBookID)
	}

	out := snap.DB()
	if out.SelectedBookID != "" {
		if _, ok := out.FindBook(out.SelectedBookID); !ok {
			out.SelectedBookID = ""
		}
	}
	return out, nil
}

func (s Store) saveLocalStorage(ctx context.Context, st *DB) error {
	if st == nil {
		return errors.New("nil db")
	}
	snap := SnapshotOf(st)
	entries := map[string]any{
		KeyBooks:          snap.Books,
		KeyBookCategories: snap.BookCategories,
		KeySelectedBookID: snap.SelectedBookID,
	}

	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	nowMs := time.Now().UTC().UnixMilli()
	for k, v := range entries {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", k, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO local_storage(k, v, updated_at_unixms) VALUES(?, ?, ?)`, k, string(raw), nowMs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func readLocalStorage(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT k, v FROM local_storage`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, rows.Err()
}
