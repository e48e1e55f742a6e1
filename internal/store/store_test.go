package store

import (
	"testing"
	"time"

	"kb-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testItem(id string, typ model.ItemType, name string, parent *string) model.Item {
	return model.Item{
		ID:        id,
		Type:      typ,
		Name:      name,
		BookID:    "b1",
		ParentID:  parent,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}

func seedDB(t *testing.T) *DB {
	t.Helper()
	db := NewDB()
	db.SetClock(func() time.Time { return testNow.Add(time.Hour) })
	db.PutBook(model.Book{ID: "b1", Name: "Handbook", CreatedAt: testNow, UpdatedAt: testNow})
	db.PutItem("b1", testItem("c1", model.ItemTypeCategory, "Guides", nil))
	db.PutItem("b1", testItem("c2", model.ItemTypeCategory, "FAQ", nil))
	db.PutItem("b1", testItem("a1", model.ItemTypeArticle, "Intro", model.StrPtr("c1")))
	db.PutItem("b1", testItem("f1", model.ItemTypeFolder, "Setup", model.StrPtr("c1")))
	db.PutItem("b1", testItem("x1", model.ItemTypeFile, "Archive", model.StrPtr("c1")))
	db.PutItem("b1", testItem("a2", model.ItemTypeArticle, "Another", model.StrPtr("c1")))
	return db
}

func ids(items []model.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestChildren_OrderedByTypeRankThenName(t *testing.T) {
	db := seedDB(t)

	assert.Equal(t, []string{"c2", "c1"}, ids(db.Children("b1", nil)))
	assert.Equal(t, []string{"f1", "a2", "a1", "x1"}, ids(db.Children("b1", model.StrPtr("c1"))))
	assert.Empty(t, db.Children("b1", model.StrPtr("c2")))
}

func TestChildren_MatchesParentAndBookExactly(t *testing.T) {
	db := seedDB(t)
	db.PutItem("b2", testItem("o1", model.ItemTypeArticle, "Other", model.StrPtr("c1")))

	for _, ch := range db.Children("b1", model.StrPtr("c1")) {
		assert.Equal(t, "b1", ch.BookID)
		require.NotNil(t, ch.ParentID)
		assert.Equal(t, "c1", *ch.ParentID)
	}
	assert.NotContains(t, ids(db.Children("b1", model.StrPtr("c1"))), "o1")
}

func TestReads_UnknownBookAreEmpty(t *testing.T) {
	db := NewDB()
	_, ok := db.GetItem("nope", "a1")
	assert.False(t, ok)
	assert.Empty(t, db.Children("nope", nil))
	assert.Empty(t, db.ItemsOf("nope"))
	assert.NotContains(t, db.Items, "nope")
}

func TestSetItem_AutoCreatesBookAndStampsUpdatedAt(t *testing.T) {
	db := NewDB()
	db.SetClock(func() time.Time { return testNow.Add(2 * time.Hour) })

	db.SetItem("fresh", testItem("a1", model.ItemTypeArticle, "Intro", nil))

	got, ok := db.GetItem("fresh", "a1")
	require.True(t, ok)
	assert.Equal(t, "fresh", got.BookID)
	assert.Equal(t, testNow.Add(2*time.Hour), got.UpdatedAt)
	assert.Equal(t, testNow, got.CreatedAt)
}

func TestPutItem_StoresCopy(t *testing.T) {
	db := NewDB()
	it := testItem("a1", model.ItemTypeArticle, "Intro", model.StrPtr("c1"))
	db.PutItem("b1", it)
	*it.ParentID = "changed"

	got, _ := db.GetItem("b1", "a1")
	assert.Equal(t, "c1", *got.ParentID)
}

func TestDeleteItem_DoesNotCascade(t *testing.T) {
	db := seedDB(t)
	db.DeleteItem("b1", "c1")

	_, ok := db.GetItem("b1", "c1")
	assert.False(t, ok)
	a1, ok := db.GetItem("b1", "a1")
	require.True(t, ok)
	assert.Equal(t, "c1", a1.Parent())
}

func TestAncestors_TerminatesOnCycle(t *testing.T) {
	db := seedDB(t)
	db.PutItem("b1", testItem("c1", model.ItemTypeCategory, "Guides", model.StrPtr("f1")))

	anc := db.Ancestors("b1", "a1")
	assert.Equal(t, []string{"c1", "f1"}, anc)
	assert.True(t, db.IsAncestor("b1", "c1", "a1"))
	assert.False(t, db.IsAncestor("b1", "c2", "a1"))
}

func TestDescendantsAndPath(t *testing.T) {
	db := seedDB(t)
	db.PutItem("b1", testItem("a3", model.ItemTypeArticle, "Deep", model.StrPtr("f1")))

	assert.Equal(t, []string{"f1", "a3", "a2", "a1", "x1"}, ids(db.Descendants("b1", "c1")))
	assert.Equal(t, []string{"Guides", "Setup", "Deep"}, db.Path("b1", "a3"))
	assert.Equal(t, "handbook/guides/setup/deep", StoragePath(db, "b1", "a3"))
	assert.Equal(t, "", StoragePath(db, "b1", "missing"))
}

func TestRemoveBook_ClearsSelection(t *testing.T) {
	db := seedDB(t)
	db.SelectedBookID = "b1"
	db.RemoveBook("b1")

	assert.Empty(t, db.SelectedBookID)
	assert.Empty(t, db.ItemsOf("b1"))
	_, ok := db.FindBook("b1")
	assert.False(t, ok)
}

func TestNextID_UsesPrefixAndAvoidsCollisions(t *testing.T) {
	db := seedDB(t)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := db.NextID(IDPrefix(model.ItemTypeArticle))
		require.Regexp(t, `^art-[a-z2-7]+$`, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		db.PutItem("b1", testItem(id, model.ItemTypeArticle, "x", nil))
	}
}
