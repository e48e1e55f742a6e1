package kb

import (
	"context"
	"io"
	"testing"

	"kb-cli/internal/model"
	"kb-cli/internal/mutate"
	"kb-cli/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// openSeeded creates book b1 with categories "Guides" and "FAQ" and article "Intro" in Guides.
func openSeeded(t *testing.T) (*Session, store.Store, map[string]string) {
	t.Helper()
	ctx := context.Background()
	st := store.Store{Dir: t.TempDir()}
	s, err := Open(ctx, st, Options{HistoryMaxSize: 50, Log: quiet()})
	require.NoError(t, err)

	b, err := s.Mutator.AddBook("Handbook", "")
	require.NoError(t, err)
	require.Equal(t, b.Book.ID, s.SelectedBook())

	ids := map[string]string{"b1": b.Book.ID}
	add := func(key string, typ model.ItemType, name string, parent *string) {
		res, err := s.Mutator.AddItem(b.Book.ID, mutate.AddItemInput{Type: typ, Name: name, ParentID: parent})
		require.NoError(t, err)
		ids[key] = res.Item.ID
	}
	add("c1", model.ItemTypeCategory, "Guides", nil)
	add("c2", model.ItemTypeCategory, "FAQ", nil)
	add("a1", model.ItemTypeArticle, "Intro", model.StrPtr(ids["c1"]))
	require.NoError(t, s.Err())
	require.NoError(t, s.ClearHistory(ctx))
	return s, st, ids
}

func TestSession_MoveUndoRedoScenario(t *testing.T) {
	ctx := context.Background()
	s, _, ids := openSeeded(t)
	book := ids["b1"]

	res, err := s.Mutator.Move(book, ids["a1"], ids["c2"], model.PositionInside, model.ItemTypeArticle, model.ItemTypeCategory)
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.NoError(t, s.Err())

	a1, _ := s.DB.GetItem(book, ids["a1"])
	assert.Equal(t, ids["c2"], a1.Parent())
	require.Len(t, s.History.UndoEntries(), 1)
	assert.Contains(t, s.History.UndoEntries()[0], "moved")

	desc, err := s.Undo(ctx)
	require.NoError(t, err)
	assert.Contains(t, desc, "moved")
	a1, _ = s.DB.GetItem(book, ids["a1"])
	assert.Equal(t, ids["c1"], a1.Parent())

	_, err = s.Redo(ctx)
	require.NoError(t, err)
	a1, _ = s.DB.GetItem(book, ids["a1"])
	assert.Equal(t, ids["c2"], a1.Parent())
}

func TestSession_HistorySurvivesReopen(t *testing.T) {
	ctx := context.Background()
	s, st, ids := openSeeded(t)
	book := ids["b1"]

	_, err := s.Mutator.RenameItem(book, ids["a1"], "Welcome")
	require.NoError(t, err)
	require.NoError(t, s.Err())

	reopened, err := Open(ctx, st, Options{Log: quiet()})
	require.NoError(t, err)
	require.Equal(t, []string{`renamed article "Intro" to "Welcome"`}, reopened.History.UndoEntries())

	_, err = reopened.Undo(ctx)
	require.NoError(t, err)

	again, err := Open(ctx, st, Options{Log: quiet()})
	require.NoError(t, err)
	a1, ok := again.DB.GetItem(book, ids["a1"])
	require.True(t, ok)
	assert.Equal(t, "Intro", a1.Name)
	assert.True(t, again.History.CanRedo())
}

func TestSession_DeleteUndoRestoresSubtree(t *testing.T) {
	ctx := context.Background()
	s, _, ids := openSeeded(t)
	book := ids["b1"]
	before := s.DB.ItemsOf(book)

	_, err := s.Mutator.DeleteItem(book, ids["c1"])
	require.NoError(t, err)
	assert.Len(t, s.DB.ItemsOf(book), len(before)-2)

	_, err = s.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, s.DB.ItemsOf(book))

	_, err = s.Redo(ctx)
	require.NoError(t, err)
	_, err = s.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, s.DB.ItemsOf(book))
}

func TestSession_SwitchBookClearsHistory(t *testing.T) {
	ctx := context.Background()
	s, _, ids := openSeeded(t)
	_, err := s.Mutator.RenameItem(ids["b1"], ids["a1"], "Welcome")
	require.NoError(t, err)
	require.True(t, s.History.CanUndo())

	other, err := s.Mutator.AddBook("Second", "")
	require.NoError(t, err)
	require.NoError(t, s.SwitchBook(ctx, other.Book.ID))

	assert.False(t, s.History.CanUndo())
	assert.Equal(t, other.Book.ID, s.SelectedBook())

	var nf mutate.NotFoundError
	assert.ErrorAs(t, s.SwitchBook(ctx, "missing"), &nf)
}

func TestSession_MutationsOutsideSelectedBookAreNotRecorded(t *testing.T) {
	s, _, _ := openSeeded(t)
	other, err := s.Mutator.AddBook("Second", "")
	require.NoError(t, err)
	_, err = s.Mutator.AddItem(other.Book.ID, mutate.AddItemInput{Type: model.ItemTypeCategory, Name: "Elsewhere"})
	require.NoError(t, err)
	assert.False(t, s.History.CanUndo())
}

func TestSession_UndoWithEmptyHistory(t *testing.T) {
	s, _, _ := openSeeded(t)
	desc, err := s.Undo(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, desc)
}

func TestSession_EventsAreAppended(t *testing.T) {
	ctx := context.Background()
	s, st, ids := openSeeded(t)
	_, err := s.Mutator.Move(ids["b1"], ids["a1"], ids["c2"], model.PositionInside, "", "")
	require.NoError(t, err)
	_, err = s.Undo(ctx)
	require.NoError(t, err)

	evs, err := st.ReadEvents(ctx, ids["b1"], 2)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, mutate.KindItemMove, evs[0].Type)
	assert.Equal(t, "history.undo", evs[1].Type)
	assert.Equal(t, ids["a1"], evs[1].EntityID)
}

func TestShortcutFor(t *testing.T) {
	cases := map[string]Shortcut{
		"ctrl+z":       ShortcutUndo,
		"cmd+z":        ShortcutUndo,
		"Ctrl+Z":       ShortcutUndo,
		"ctrl+shift+z": ShortcutRedo,
		"shift+cmd+z":  ShortcutRedo,
		"ctrl+y":       ShortcutRedo,
		"cmd+y":        ShortcutRedo,
		"z":            ShortcutNone,
		"shift+z":      ShortcutNone,
		"alt+z":        ShortcutNone,
		"ctrl+x":       ShortcutNone,
	}
	for chord, want := range cases {
		assert.Equal(t, want, ShortcutFor(chord), chord)
	}
}

func TestHandleShortcut(t *testing.T) {
	ctx := context.Background()
	s, _, ids := openSeeded(t)
	_, err := s.Mutator.RenameItem(ids["b1"], ids["a1"], "Welcome")
	require.NoError(t, err)

	desc, handled, err := s.HandleShortcut(ctx, "ctrl+z")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Contains(t, desc, "renamed")

	_, handled, err = s.HandleShortcut(ctx, "ctrl+y")
	require.NoError(t, err)
	assert.True(t, handled)
	a1, _ := s.DB.GetItem(ids["b1"], ids["a1"])
	assert.Equal(t, "Welcome", a1.Name)

	_, handled, _ = s.HandleShortcut(ctx, "ctrl+q")
	assert.False(t, handled)
}
