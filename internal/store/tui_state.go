package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const tuiStateFileName = "tui_state.json"

// TUIState is the tree view's last layout: which containers were open and where the cursor
// was, per book. Loading is best effort; a missing or damaged file yields an empty state.
type TUIState struct {
	Version     int                     `json:"version"`
	ShowPreview bool                    `json:"showPreview,omitempty"`
	Books       map[string]TUIBookState `json:"books,omitempty"`
}

type TUIBookState struct {
	// Expanded overrides each container's autoExpand flag.
	Expanded map[string]bool `json:"expanded,omitempty"`
	CursorID string          `json:"cursorId,omitempty"`
}

func (s Store) tuiStatePath() string {
	return filepath.Join(s.Dir, tuiStateFileName)
}

func (s Store) LoadTUIState() (*TUIState, error) {
	empty := &TUIState{Version: 1, Books: map[string]TUIBookState{}}
	if strings.TrimSpace(s.Dir) == "" {
		return empty, nil
	}
	b, err := os.ReadFile(s.tuiStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return empty, nil
		}
		return nil, err
	}
	var st TUIState
	if err := json.Unmarshal(b, &st); err != nil {
		return empty, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	if st.Books == nil {
		st.Books = map[string]TUIBookState{}
	}
	return &st, nil
}

// SaveTUIState writes st, dropping entries for books that no longer exist in db.
func (s Store) SaveTUIState(st *TUIState, db *DB) error {
	if st == nil || strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	if db != nil {
		for id := range st.Books {
			if _, ok := db.FindBook(id); !ok {
				delete(st.Books, id)
			}
		}
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.tuiStatePath(), append(b, '\n'), 0o644)
}
