package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLog_AppendAndRead(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	ctx := context.Background()

	for _, e := range []struct{ typ, book, id string }{
		{"item.create", "b1", "a1"},
		{"item.move", "b1", "a1"},
		{"item.create", "b2", "a9"},
	} {
		require.NoError(t, s.AppendEvent(ctx, e.typ, e.book, e.id, map[string]any{"id": e.id}))
	}

	all, err := s.ReadEvents(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "item.create", all[0].Type)
	assert.Equal(t, "b2", all[2].BookID)
	assert.NotEmpty(t, all[0].ID)
	assert.NotEqual(t, all[0].ID, all[1].ID, "event ids are unique")

	b1, err := s.ReadEvents(ctx, "b1", 1)
	require.NoError(t, err)
	require.Len(t, b1, 1)
	assert.Equal(t, "item.move", b1[0].Type, "newest b1 event")
}

func TestEventLog_RejectsMissingFields(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	assert.Error(t, s.AppendEvent(context.Background(), "", "b1", "a1", nil), "missing type")
	assert.Error(t, s.AppendEvent(context.Background(), "item.create", "b1", " ", nil), "missing entity id")
}
