package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemType_RankOrder(t *testing.T) {
	assert.Less(t, ItemTypeCategory.Rank(), ItemTypeFolder.Rank())
	assert.Less(t, ItemTypeFolder.Rank(), ItemTypeArticle.Rank())
	assert.Less(t, ItemTypeArticle.Rank(), ItemTypeFile.Rank())
	assert.False(t, ItemType("bogus").Valid())
}

func TestItem_CloneIsDeep(t *testing.T) {
	it := Item{ID: "a", ParentID: StrPtr("c1")}
	cp := it.Clone()
	*cp.ParentID = "c2"
	require.Equal(t, "c1", *it.ParentID)
}

func TestItem_NullParentSerialized(t *testing.T) {
	b, err := json.Marshal(Item{ID: "a", Type: ItemTypeArticle})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"parentId":null`)
	assert.NotContains(t, string(b), "content")
}

func TestParsePosition(t *testing.T) {
	cases := map[string]Position{
		"before": PositionBefore,
		"AFTER":  PositionAfter,
		"inside": PositionInside,
		"":       PositionInside,
	}
	for in, want := range cases {
		got, err := ParsePosition(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePosition("sideways")
	require.Error(t, err)
}

func TestSameParent(t *testing.T) {
	assert.True(t, SameParent(nil, nil))
	assert.False(t, SameParent(nil, StrPtr("x")))
	assert.True(t, SameParent(StrPtr("x"), StrPtr(" x")))
}
