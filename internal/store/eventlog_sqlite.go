package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"kb-cli/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked"
	// when the TUI and a CLI command touch the workspace at the same time.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS local_storage (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL UNIQUE,
			book_id TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			type TEXT NOT NULL,
			issued_at_unixms INTEGER NOT NULL,
			payload_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_book ON events(book_id, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id, seq);`,
		`CREATE TABLE IF NOT EXISTS history (
			stack TEXT NOT NULL,
			pos INTEGER NOT NULL,
			json TEXT NOT NULL,
			PRIMARY KEY(stack, pos)
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// AppendEvent records a mutation in the workspace event log.
func (s Store) AppendEvent(ctx context.Context, typ, bookID, entityID string, payload any) error {
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return errors.New("append event: missing type")
	}
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return errors.New("append event: missing entity id")
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT INTO events(event_id, book_id, entity_id, type, issued_at_unixms, payload_json) VALUES(?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), strings.TrimSpace(bookID), entityID, typ, time.Now().UTC().UnixMilli(), string(pb))
	return err
}

// ReadEvents returns events oldest-first. bookID == "" means all books; limit <= 0 means all.
// When limit is set, the newest `limit` events are returned (still oldest-first).
func (s Store) ReadEvents(ctx context.Context, bookID string, limit int) ([]model.Event, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT event_id, book_id, entity_id, type, issued_at_unixms, payload_json FROM events`
	args := []any{}
	if bookID = strings.TrimSpace(bookID); bookID != "" {
		q += ` WHERE book_id = ?`
		args = append(args, bookID)
	}
	q += ` ORDER BY seq DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var id, book, entityID, typ, payloadJSON string
		var tsMs int64
		if err := rows.Scan(&id, &book, &entityID, &typ, &tsMs, &payloadJSON); err != nil {
			return nil, err
		}
		var payload any
		_ = json.Unmarshal([]byte(payloadJSON), &payload)
		out = append(out, model.Event{
			ID:       id,
			TS:       time.UnixMilli(tsMs).UTC(),
			Type:     typ,
			BookID:   book,
			EntityID: entityID,
			Payload:  payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
