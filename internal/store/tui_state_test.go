package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUIState_SaveLoadRoundTrip(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	st0, err := s.LoadTUIState()
	require.NoError(t, err)
	assert.Equal(t, 1, st0.Version)
	assert.Empty(t, st0.Books)

	db := seedDB(t)
	want := &TUIState{
		ShowPreview: true,
		Books: map[string]TUIBookState{
			"b1":   {Expanded: map[string]bool{"c1": true, "f1": false}, CursorID: "a1"},
			"gone": {CursorID: "x"},
		},
	}
	require.NoError(t, s.SaveTUIState(want, db))

	got, err := s.LoadTUIState()
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.True(t, got.ShowPreview)
	assert.Equal(t, want.Books["b1"], got.Books["b1"])
	assert.NotContains(t, got.Books, "gone")
}

func TestTUIState_CorruptFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, tuiStateFileName), []byte("{nope"), 0o644))

	st, err := Store{Dir: dir}.LoadTUIState()
	require.NoError(t, err)
	assert.Equal(t, 1, st.Version)
	assert.NotNil(t, st.Books)
}
