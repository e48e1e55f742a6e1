package history

import (
	"encoding/json"
	"testing"
	"time"

	"kb-cli/internal/model"
	"kb-cli/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func item(id string, typ model.ItemType, name string, parent *string) model.Item {
	return model.Item{ID: id, Type: typ, Name: name, BookID: "b1", ParentID: parent, CreatedAt: t0, UpdatedAt: t0}
}

func seed() *store.DB {
	db := store.NewDB()
	db.SetClock(func() time.Time { return t0.Add(time.Minute) })
	db.PutItem("b1", item("c1", model.ItemTypeCategory, "Guides", nil))
	db.PutItem("b1", item("c2", model.ItemTypeCategory, "FAQ", nil))
	db.PutItem("b1", item("a1", model.ItemTypeArticle, "Intro", model.StrPtr("c1")))
	return db
}

func TestMoveAction_UndoRedo(t *testing.T) {
	db := seed()
	before, _ := db.GetItem("b1", "a1")
	b := before.Clone()
	after := b.Clone()
	after.ParentID = model.StrPtr("c2")
	after.UpdatedAt = t0.Add(time.Hour)
	db.PutItem("b1", after)

	a := MoveAction(db, b, after)
	assert.Contains(t, a.Description(), "moved")

	require.NoError(t, a.Undo())
	got, _ := db.GetItem("b1", "a1")
	assert.Equal(t, b, *got)

	require.NoError(t, a.Redo())
	got, _ = db.GetItem("b1", "a1")
	assert.Equal(t, after, *got)
}

func TestMoveAction_RestoresTopLevel(t *testing.T) {
	db := seed()
	before := item("c1", model.ItemTypeCategory, "Guides", nil)
	after := before.Clone()
	after.ParentID = model.StrPtr("c2")
	db.PutItem("b1", after)

	require.NoError(t, MoveAction(db, before, after).Undo())
	got, _ := db.GetItem("b1", "c1")
	assert.Nil(t, got.ParentID)
}

func TestMoveAction_MissingItemIsNoOp(t *testing.T) {
	db := seed()
	before, _ := db.GetItem("b1", "a1")
	a := MoveAction(db, before.Clone(), before.Clone())
	db.DeleteItem("b1", "a1")

	assert.NoError(t, a.Undo())
	_, ok := db.GetItem("b1", "a1")
	assert.False(t, ok)
}

func TestAddAndDeleteActions_ExactRestore(t *testing.T) {
	db := seed()
	subtree := []model.Item{
		item("f1", model.ItemTypeFolder, "Setup", model.StrPtr("c2")),
		item("a9", model.ItemTypeArticle, "Install", model.StrPtr("f1")),
	}
	for _, it := range subtree {
		db.PutItem("b1", it)
	}

	add := AddAction(db, subtree)
	assert.Equal(t, `added folder "Setup" and 1 child`, add.Description())
	require.NoError(t, add.Undo())
	_, ok := db.GetItem("b1", "a9")
	assert.False(t, ok)
	require.NoError(t, add.Redo())
	assert.Equal(t, subtree, db.Descendants("b1", "c2"))

	del := DeleteAction(db, subtree)
	require.NoError(t, del.Redo())
	assert.Empty(t, db.Descendants("b1", "c2"))
	require.NoError(t, del.Undo())
	assert.Equal(t, subtree, db.Descendants("b1", "c2"))

	assert.Nil(t, AddAction(db, nil))
	assert.Nil(t, DeleteAction(db, nil))
}

func TestRenameAction_UndoRedo(t *testing.T) {
	db := seed()
	before, _ := db.GetItem("b1", "a1")
	b := before.Clone()
	after := b.Clone()
	after.Name = "Welcome"
	after.UpdatedAt = t0.Add(time.Hour)
	db.PutItem("b1", after)

	a := RenameAction(db, b, after)
	assert.Equal(t, `renamed article "Intro" to "Welcome"`, a.Description())
	require.NoError(t, a.Undo())
	got, _ := db.GetItem("b1", "a1")
	assert.Equal(t, b, *got)
	require.NoError(t, a.Redo())
	got, _ = db.GetItem("b1", "a1")
	assert.Equal(t, after, *got)
}

func TestUpdateAction_SwapsSnapshots(t *testing.T) {
	db := seed()
	before, _ := db.GetItem("b1", "a1")
	b := before.Clone()
	after := b.Clone()
	after.Status = model.StatusReview
	after.Content = "# Hello"
	db.PutItem("b1", after)

	a := UpdateAction(db, `changed status of "Intro"`, b, after)
	require.NoError(t, a.Undo())
	got, _ := db.GetItem("b1", "a1")
	assert.Equal(t, "", got.Status)
	require.NoError(t, a.Redo())
	got, _ = db.GetItem("b1", "a1")
	assert.Equal(t, "# Hello", got.Content)
}

func TestEncodeDecode_RebuildsActions(t *testing.T) {
	db := seed()
	before, _ := db.GetItem("b1", "a1")
	b := before.Clone()
	after := b.Clone()
	after.ParentID = model.StrPtr("c2")
	db.PutItem("b1", after)

	raw, err := Encode([]Action{
		MoveAction(db, b, after),
		AddAction(db, []model.Item{after}),
		&fakeAction{name: "transient"},
	})
	require.NoError(t, err)
	require.Len(t, raw, 2)

	var rec Record
	require.NoError(t, json.Unmarshal(raw[0], &rec))
	assert.Equal(t, KindMove, rec.Kind)

	actions, err := Decode(raw, db)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Contains(t, actions[0].Description(), "moved")

	require.NoError(t, actions[0].Undo())
	got, _ := db.GetItem("b1", "a1")
	assert.Equal(t, "c1", got.Parent())

	_, err = Decode([]json.RawMessage{json.RawMessage(`{"kind":"bogus"}`)}, db)
	assert.Error(t, err)
}
