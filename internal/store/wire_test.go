package store

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairs_MarshalsSortedArray(t *testing.T) {
	b, err := json.Marshal(Pairs[int]{"b": 2, "a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `[["a",1],["b",2]]`, string(b))
}

func TestPairs_UnmarshalEmptyAndInvalid(t *testing.T) {
	var p Pairs[int]
	require.NoError(t, json.Unmarshal([]byte(`null`), &p))
	assert.NotNil(t, p)
	assert.Empty(t, p)

	assert.Error(t, json.Unmarshal([]byte(`[["a"]]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`[[1,2]]`), &p))
}

func TestSnapshot_RoundTripPreservesItems(t *testing.T) {
	db := seedDB(t)
	db.SelectedBookID = "b1"

	b, err := json.Marshal(SnapshotOf(db))
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(b, &snap))
	got := snap.DB()

	assert.Equal(t, db.SelectedBookID, got.SelectedBookID)
	assert.Equal(t, db.ItemsOf("b1"), got.ItemsOf("b1"))
	assert.Equal(t, db.SortedBooks(), got.SortedBooks())
}

func TestExportImport(t *testing.T) {
	db := seedDB(t)
	path := filepath.Join(t.TempDir(), "kb.json")

	require.NoError(t, ExportFile(db, path))
	got, err := ImportFile(path)
	require.NoError(t, err)
	assert.Equal(t, db.ItemsOf("b1"), got.ItemsOf("b1"))

	_, err = ImportFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
