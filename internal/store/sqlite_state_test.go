package store

import (
	"context"
	"encoding/json"
	"testing"

	"kb-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteState_SaveLoad_RoundTrip(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	db := seedDB(t)
	db.SelectedBookID = "b1"

	require.NoError(t, s.Save(db))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "b1", got.SelectedBookID)

	b, ok := got.FindBook("b1")
	require.True(t, ok)
	assert.Equal(t, "Handbook", b.Name)

	want := db.ItemsOf("b1")
	have := got.ItemsOf("b1")
	require.Len(t, have, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, have[i].ID)
		assert.Equal(t, want[i].Parent(), have[i].Parent(), want[i].ID)
		assert.True(t, have[i].UpdatedAt.Equal(want[i].UpdatedAt), want[i].ID)
	}
}

func TestSQLiteState_EmptyWorkspaceLoadsEmptyDB(t *testing.T) {
	got, err := Store{Dir: t.TempDir()}.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Books)
	assert.Empty(t, got.Items)
	assert.Empty(t, got.SelectedBookID)
}

func TestSQLiteState_DropsSelectionOfMissingBook(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	db := NewDB()
	db.SelectedBookID = "gone"
	require.NoError(t, s.Save(db))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got.SelectedBookID)
}

func TestSQLiteState_StoresPairArrays(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	ctx := context.Background()
	require.NoError(t, s.Save(seedDB(t)))

	sdb, err := s.openSQLite(ctx)
	require.NoError(t, err)
	defer sdb.Close()
	raw, err := readLocalStorage(ctx, sdb)
	require.NoError(t, err)

	var books [][]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw[KeyBooks]), &books), "books is not an array of pairs: %s", raw[KeyBooks])
	require.Len(t, books, 1)
	require.Len(t, books[0], 2)
	assert.JSONEq(t, `"b1"`, string(books[0][0]))

	var cats Pairs[Pairs[model.Item]]
	require.NoError(t, json.Unmarshal([]byte(raw[KeyBookCategories]), &cats))
	assert.Len(t, cats["b1"], 6)
}

func TestHistoryStacks_SaveLoad(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	ctx := context.Background()
	in := HistoryStacks{
		Undo: []json.RawMessage{json.RawMessage(`{"n":1}`), json.RawMessage(`{"n":2}`)},
		Redo: []json.RawMessage{json.RawMessage(`{"n":3}`)},
	}
	require.NoError(t, s.SaveHistory(ctx, in))
	got, err := s.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, got.Undo, 2)
	assert.JSONEq(t, `{"n":2}`, string(got.Undo[1]))
	assert.Len(t, got.Redo, 1)

	require.NoError(t, s.SaveHistory(ctx, HistoryStacks{}))
	got, err = s.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Undo)
	assert.Empty(t, got.Redo)
}
