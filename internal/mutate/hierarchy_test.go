package mutate

import (
	"errors"
	"io"
	"testing"
	"time"

	"kb-cli/internal/model"
	"kb-cli/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func item(id string, typ model.ItemType, name string, parent *string, created time.Time) model.Item {
	return model.Item{ID: id, Type: typ, Name: name, BookID: "b1", ParentID: parent, CreatedAt: created, UpdatedAt: created}
}

type fixture struct {
	db       *store.DB
	m        *Mutator
	persists int
	seen     []Mutation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := store.NewDB()
	db.SetClock(func() time.Time { return t0.Add(time.Hour) })
	db.PutBook(model.Book{ID: "b1", Name: "Handbook", CreatedAt: t0, UpdatedAt: t0})
	db.PutItem("b1", item("c1", model.ItemTypeCategory, "Guides", nil, t0))
	db.PutItem("b1", item("c2", model.ItemTypeCategory, "FAQ", nil, t0.Add(time.Minute)))
	db.PutItem("b1", item("a1", model.ItemTypeArticle, "Intro", model.StrPtr("c1"), t0))
	db.PutItem("b1", item("f1", model.ItemTypeFolder, "Setup", model.StrPtr("c1"), t0))
	db.PutItem("b1", item("a2", model.ItemTypeArticle, "Install", model.StrPtr("f1"), t0))

	log := logrus.New()
	log.SetOutput(io.Discard)
	f := &fixture{db: db}
	f.m = New(db, func() error { f.persists++; return nil }, log)
	f.m.Subscribe(func(mu Mutation) { f.seen = append(f.seen, mu) })
	return f
}

func (f *fixture) parent(t *testing.T, id string) string {
	t.Helper()
	it, ok := f.db.GetItem("b1", id)
	require.True(t, ok, "item %s missing", id)
	return it.Parent()
}

func TestMove_IntoContainerIgnoresPosition(t *testing.T) {
	for _, pos := range []model.Position{model.PositionBefore, model.PositionAfter, model.PositionInside} {
		f := newFixture(t)
		res, err := f.m.Move("b1", "a1", "c2", pos, model.ItemTypeArticle, model.ItemTypeCategory)
		require.NoError(t, err, pos)
		assert.True(t, res.Changed, pos)
		assert.Equal(t, "c2", f.parent(t, "a1"), pos)
	}
}

func TestMove_BeforeLeafBecomesSibling(t *testing.T) {
	f := newFixture(t)
	_, err := f.m.Move("b1", "a1", "a2", model.PositionBefore, model.ItemTypeArticle, model.ItemTypeArticle)
	require.NoError(t, err)
	assert.Equal(t, "f1", f.parent(t, "a1"), "target's parent")
}

func TestMove_InsideLeafActsAsAfter(t *testing.T) {
	f := newFixture(t)
	_, err := f.m.Move("b1", "c2", "a1", model.PositionInside, model.ItemTypeCategory, model.ItemTypeArticle)
	require.NoError(t, err)
	assert.Equal(t, "c1", f.parent(t, "c2"))
}

func TestMove_PersistsAndEmitsOnChange(t *testing.T) {
	f := newFixture(t)
	res, err := f.m.Move("b1", "a1", "c2", model.PositionInside, model.ItemTypeArticle, model.ItemTypeCategory)
	require.NoError(t, err)
	assert.Equal(t, 1, f.persists)
	require.Len(t, f.seen, 1)

	mu := f.seen[0]
	assert.Equal(t, KindItemMove, mu.Kind)
	assert.Equal(t, "c1", mu.Before[0].Parent())
	assert.Equal(t, "c2", mu.After[0].Parent())
	assert.True(t, res.Item.UpdatedAt.Equal(t0.Add(time.Hour)), "UpdatedAt stamped, got %v", res.Item.UpdatedAt)
	assert.Equal(t, "c1", res.EventPayload["from"])
	assert.Equal(t, "c2", res.EventPayload["to"])
}

func TestMove_UnchangedParentIsNotRecorded(t *testing.T) {
	f := newFixture(t)
	res, err := f.m.Move("b1", "a1", "c1", model.PositionInside, model.ItemTypeArticle, model.ItemTypeCategory)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Zero(t, f.persists)
	assert.Empty(t, f.seen)
}

func TestMove_MissingEntitiesAreNoOps(t *testing.T) {
	f := newFixture(t)
	cases := []struct{ book, item, target string }{
		{"nope", "a1", "c2"},
		{"b1", "nope", "c2"},
		{"b1", "a1", "nope"},
	}
	for _, tc := range cases {
		res, err := f.m.Move(tc.book, tc.item, tc.target, model.PositionInside, "", "")
		require.NoError(t, err, "%+v", tc)
		assert.False(t, res.Changed, "%+v", tc)
	}
	assert.Empty(t, f.seen)
}

func TestMove_RejectsCycles(t *testing.T) {
	f := newFixture(t)
	_, err := f.m.Move("b1", "c1", "f1", model.PositionInside, model.ItemTypeCategory, model.ItemTypeFolder)
	assert.ErrorIs(t, err, ErrCycle, "c1 under its own descendant")
	_, err = f.m.Move("b1", "c1", "c1", model.PositionInside, model.ItemTypeCategory, model.ItemTypeCategory)
	assert.ErrorIs(t, err, ErrCycle, "self move")

	assert.Empty(t, f.parent(t, "c1"))
	assert.Empty(t, f.seen)
}

func TestMove_StoredTypeUsedWhenTargetTypeUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.m.Move("b1", "a1", "f1", model.PositionBefore, "", "")
	require.NoError(t, err)
	assert.Equal(t, "f1", f.parent(t, "a1"), "folder f1 is a container")
}

func TestMoveToEnd(t *testing.T) {
	f := newFixture(t)

	_, err := f.m.MoveToEnd("b1", "a2", model.ItemTypeArticle)
	require.NoError(t, err)
	assert.Equal(t, "c2", f.parent(t, "a2"), "newest category")

	f.db.PutItem("b1", item("c3", model.ItemTypeCategory, "Nested", model.StrPtr("c1"), t0))
	_, err = f.m.MoveToEnd("b1", "c3", model.ItemTypeCategory)
	require.NoError(t, err)
	assert.Empty(t, f.parent(t, "c3"), "categories go to the top level")
}

func TestMoveToEnd_NoCategoriesGoesTopLevel(t *testing.T) {
	db := store.NewDB()
	db.PutItem("b1", item("f1", model.ItemTypeFolder, "Loose", nil, t0))
	db.PutItem("b1", item("a1", model.ItemTypeArticle, "Intro", model.StrPtr("f1"), t0))
	m := New(db, nil, nil)

	_, err := m.MoveToEnd("b1", "a1", "")
	require.NoError(t, err)
	it, _ := db.GetItem("b1", "a1")
	assert.Nil(t, it.ParentID)
}

func TestMoveToEnd_SkipsCategoriesInsideTheItem(t *testing.T) {
	f := newFixture(t)
	// The newest category sits inside folder f1.
	f.db.PutItem("b1", item("c3", model.ItemTypeCategory, "Recipes", model.StrPtr("f1"), t0.Add(time.Hour)))

	res, err := f.m.MoveToEnd("b1", "f1", model.ItemTypeFolder)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "c2", f.parent(t, "f1"), "newest category outside the folder")

	db := store.NewDB()
	db.PutItem("b1", item("f2", model.ItemTypeFolder, "Wrapper", nil, t0))
	db.PutItem("b1", item("f1", model.ItemTypeFolder, "Loose", model.StrPtr("f2"), t0))
	db.PutItem("b1", item("c1", model.ItemTypeCategory, "Only", model.StrPtr("f1"), t0))
	m := New(db, nil, nil)

	_, err = m.MoveToEnd("b1", "f1", model.ItemTypeFolder)
	require.NoError(t, err)
	it, _ := db.GetItem("b1", "f1")
	assert.Nil(t, it.ParentID, "no category outside the folder means top level")
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	f := newFixture(t)
	calls := 0
	stop := f.m.Subscribe(func(Mutation) { calls++ })
	_, _ = f.m.Move("b1", "a1", "c2", model.PositionInside, "", "")
	stop()
	_, _ = f.m.Move("b1", "a1", "c1", model.PositionInside, "", "")
	assert.Equal(t, 1, calls)
}

func TestCommit_PersistErrorIsReturned(t *testing.T) {
	f := newFixture(t)
	f.m.Persist = func() error { return errors.New("disk full") }
	res, err := f.m.Move("b1", "a1", "c2", model.PositionInside, "", "")
	require.Error(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, f.seen, "subscribers must not run when persist fails")
}

func TestCommit_PersistErrorRollsBack(t *testing.T) {
	f := newFixture(t)
	f.m.Persist = func() error { return errors.New("disk full") }

	_, err := f.m.Move("b1", "a1", "c2", model.PositionInside, "", "")
	require.Error(t, err)
	assert.Equal(t, "c1", f.parent(t, "a1"))

	_, err = f.m.RenameItem("b1", "a1", "Welcome")
	require.Error(t, err)
	it, _ := f.db.GetItem("b1", "a1")
	assert.Equal(t, "Intro", it.Name)
	assert.True(t, it.UpdatedAt.Equal(t0), "UpdatedAt restored, got %v", it.UpdatedAt)

	_, err = f.m.DeleteItem("b1", "f1")
	require.Error(t, err)
	assert.Equal(t, "f1", f.parent(t, "a2"), "deleted subtree restored")

	before := len(f.db.ItemsOf("b1"))
	_, err = f.m.AddItem("b1", AddItemInput{Type: model.ItemTypeArticle, Name: "Draft"})
	require.Error(t, err)
	_, err = f.m.DuplicateItem("b1", "f1")
	require.Error(t, err)
	assert.Len(t, f.db.ItemsOf("b1"), before, "created items removed")

	_, err = f.m.DeleteBook("b1")
	require.Error(t, err)
	_, ok := f.db.FindBook("b1")
	assert.True(t, ok)
	assert.Len(t, f.db.ItemsOf("b1"), before)

	_, err = f.m.AddBook("Runbooks", "")
	require.Error(t, err)
	assert.Len(t, f.db.SortedBooks(), 1)

	assert.Empty(t, f.seen)
}
