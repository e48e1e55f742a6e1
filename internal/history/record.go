package history

import (
	"encoding/json"
	"fmt"
	"time"

	"kb-cli/internal/model"
)

// Record is the serializable form of a factory-built action.
type Record struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	BookID      string `json:"bookId"`
	ItemID      string `json:"itemId,omitempty"`

	OldParentID *string `json:"oldParentId,omitempty"`
	NewParentID *string `json:"newParentId,omitempty"`

	OldName string `json:"oldName,omitempty"`
	NewName string `json:"newName,omitempty"`

	OldUpdatedAt time.Time `json:"oldUpdatedAt,omitzero"`
	NewUpdatedAt time.Time `json:"newUpdatedAt,omitzero"`

	Items  []model.Item `json:"items,omitempty"`
	Before *model.Item  `json:"before,omitempty"`
	After  *model.Item  `json:"after,omitempty"`
}

// Recorder is implemented by actions that can be persisted.
type Recorder interface {
	Record() Record
}

// Rebuild turns a persisted record back into an action bound to t.
func Rebuild(rec Record, t Target) (Action, error) {
	switch rec.Kind {
	case KindMove:
		return &moveAction{
			t: t, desc: rec.Description, bookID: rec.BookID, itemID: rec.ItemID,
			oldParent: rec.OldParentID, newParent: rec.NewParentID,
			oldUpdated: rec.OldUpdatedAt, newUpdated: rec.NewUpdatedAt,
		}, nil
	case KindAdd, KindDelete:
		if len(rec.Items) == 0 {
			return nil, fmt.Errorf("history: %s record without items", rec.Kind)
		}
		return &snapshotAction{t: t, kind: rec.Kind, desc: rec.Description, bookID: rec.BookID, items: cloneItems(rec.Items)}, nil
	case KindRename:
		return &renameAction{
			t: t, desc: rec.Description, bookID: rec.BookID, itemID: rec.ItemID,
			oldName: rec.OldName, newName: rec.NewName,
			oldUpdated: rec.OldUpdatedAt, newUpdated: rec.NewUpdatedAt,
		}, nil
	case KindUpdate:
		if rec.Before == nil || rec.After == nil {
			return nil, fmt.Errorf("history: update record without snapshots")
		}
		return &updateAction{t: t, desc: rec.Description, before: rec.Before.Clone(), after: rec.After.Clone()}, nil
	default:
		return nil, fmt.Errorf("history: unknown record kind %q", rec.Kind)
	}
}

// Encode serializes actions (oldest first). Actions that are not Recorders are skipped.
func Encode(actions []Action) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(actions))
	for _, a := range actions {
		r, ok := a.(Recorder)
		if !ok {
			continue
		}
		b, err := json.Marshal(r.Record())
		if err != nil {
			return nil, fmt.Errorf("history: encode %q: %w", a.Description(), err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Decode rebuilds persisted actions against t.
func Decode(raw []json.RawMessage, t Target) ([]Action, error) {
	out := make([]Action, 0, len(raw))
	for i, b := range raw {
		var rec Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("history: decode entry %d: %w", i, err)
		}
		a, err := Rebuild(rec, t)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
