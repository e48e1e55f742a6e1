package mutate

import (
	"testing"

	"kb-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem(t *testing.T) {
	f := newFixture(t)
	res, err := f.m.AddItem("b1", AddItemInput{Type: model.ItemTypeArticle, Name: " Welcome ", ParentID: model.StrPtr("f1"), Status: "draft"})
	require.NoError(t, err)
	assert.Regexp(t, `^art-`, res.Item.ID)
	assert.Equal(t, "Welcome", res.Item.Name)
	assert.Equal(t, "f1", res.Item.Parent())

	got, ok := f.db.GetItem("b1", res.Item.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusDraft, got.Status)

	require.Len(t, f.seen, 1)
	assert.Equal(t, KindItemCreate, f.seen[0].Kind)
	assert.Len(t, f.seen[0].After, 1)
}

func TestAddItem_Validation(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		book string
		in   AddItemInput
		want error
	}{
		{"empty name", "b1", AddItemInput{Type: model.ItemTypeArticle}, ErrEmptyName},
		{"leaf parent", "b1", AddItemInput{Type: model.ItemTypeArticle, Name: "x", ParentID: model.StrPtr("a1")}, ErrNotContainer},
		{"bad status", "b1", AddItemInput{Type: model.ItemTypeArticle, Name: "x", Status: "nope"}, ErrInvalidStatus},
	}
	for _, tc := range cases {
		_, err := f.m.AddItem(tc.book, tc.in)
		assert.ErrorIs(t, err, tc.want, tc.name)
	}

	var nf NotFoundError
	_, err := f.m.AddItem("b1", AddItemInput{Type: model.ItemTypeArticle, Name: "x", ParentID: model.StrPtr("zzz")})
	assert.ErrorAs(t, err, &nf)
	_, err = f.m.AddItem("nope", AddItemInput{Type: model.ItemTypeArticle, Name: "x"})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "book", nf.Kind)
}

func TestDuplicateItem_CopiesSubtree(t *testing.T) {
	f := newFixture(t)
	res, err := f.m.DuplicateItem("b1", "f1")
	require.NoError(t, err)
	assert.Equal(t, "Setup (copy)", res.Item.Name)
	assert.Equal(t, "c1", res.Item.Parent())
	assert.NotEqual(t, "f1", res.Item.ID)

	kids := f.db.Children("b1", model.StrPtr(res.Item.ID))
	require.Len(t, kids, 1)
	assert.Equal(t, "Install", kids[0].Name)
	assert.NotEqual(t, "a2", kids[0].ID)

	orig := f.db.Children("b1", model.StrPtr("f1"))
	require.Len(t, orig, 1, "original subtree unchanged")
	assert.Equal(t, "a2", orig[0].ID)

	assert.Len(t, f.seen[len(f.seen)-1].After, 2)
}

func TestRenameItem(t *testing.T) {
	f := newFixture(t)
	res, err := f.m.RenameItem("b1", "a1", "Welcome")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Welcome", res.Item.Name)
	assert.Equal(t, "Intro", f.seen[0].Before[0].Name)
	assert.Equal(t, "Welcome", f.seen[0].After[0].Name)

	res, _ = f.m.RenameItem("b1", "a1", "Welcome")
	assert.False(t, res.Changed, "same name")
	_, err = f.m.RenameItem("b1", "a1", "  ")
	assert.ErrorIs(t, err, ErrEmptyName)

	res, err = f.m.RenameItem("b1", "missing", "x")
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestSetStatusContentExpand(t *testing.T) {
	f := newFixture(t)
	_, err := f.m.SetStatus("b1", "a1", "published")
	require.NoError(t, err)
	_, err = f.m.SetStatus("b1", "f1", "published")
	assert.ErrorIs(t, err, ErrInvalidStatus, "folders have no status")
	_, err = f.m.SetContent("b1", "a1", "# Intro")
	require.NoError(t, err)
	_, err = f.m.SetContent("b1", "c1", "x")
	assert.ErrorIs(t, err, ErrNoContent)
	_, err = f.m.SetAutoExpand("b1", "c1", true)
	require.NoError(t, err)
	_, err = f.m.SetAutoExpand("b1", "a1", true)
	assert.ErrorIs(t, err, ErrNotContainer)

	a1, _ := f.db.GetItem("b1", "a1")
	c1, _ := f.db.GetItem("b1", "c1")
	assert.Equal(t, model.StatusPublished, a1.Status)
	assert.Equal(t, "# Intro", a1.Content)
	assert.True(t, c1.AutoExpand)
	assert.Len(t, f.seen, 3)
}

func TestDeleteItem_CascadesToSubtree(t *testing.T) {
	f := newFixture(t)
	res, err := f.m.DeleteItem("b1", "c1")
	require.NoError(t, err)
	assert.True(t, res.Changed)

	for _, id := range []string{"c1", "a1", "f1", "a2"} {
		_, ok := f.db.GetItem("b1", id)
		assert.False(t, ok, "%s should be deleted", id)
	}
	before := f.seen[0].Before
	require.Len(t, before, 4)
	assert.Equal(t, "c1", before[0].ID)

	_, ok := f.db.GetItem("b1", "c2")
	assert.True(t, ok, "sibling category survives")
}
