package store

import (
	"context"
	"database/sql"
	"encoding/json"
)

const (
	historyStackUndo = "undo"
	historyStackRedo = "redo"
)

// HistoryStacks is the persisted form of the undo/redo stacks, oldest entry first.
// Entries are opaque JSON records owned by the history package.
type HistoryStacks struct {
	Undo []json.RawMessage
	Redo []json.RawMessage
}

func (s Store) LoadHistory(ctx context.Context) (HistoryStacks, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return HistoryStacks{}, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT stack, json FROM history ORDER BY stack, pos ASC`)
	if err != nil {
		return HistoryStacks{}, err
	}
	defer rows.Close()

	var out HistoryStacks
	for rows.Next() {
		var stack, js string
		if err := rows.Scan(&stack, &js); err != nil {
			return HistoryStacks{}, err
		}
		switch stack {
		case historyStackUndo:
			out.Undo = append(out.Undo, json.RawMessage(js))
		case historyStackRedo:
			out.Redo = append(out.Redo, json.RawMessage(js))
		}
	}
	return out, rows.Err()
}

// SaveHistory replaces both persisted stacks.
func (s Store) SaveHistory(ctx context.Context, h HistoryStacks) error {
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return err
	}
	write := func(stack string, entries []json.RawMessage) error {
		for i, e := range entries {
			if _, err := tx.ExecContext(ctx, `INSERT INTO history(stack, pos, json) VALUES(?, ?, ?)`, stack, i, string(e)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := write(historyStackUndo, h.Undo); err != nil {
		return err
	}
	if err := write(historyStackRedo, h.Redo); err != nil {
		return err
	}
	return tx.Commit()
}
