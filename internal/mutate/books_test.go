package mutate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooks_AddRenameDelete(t *testing.T) {
	f := newFixture(t)
	f.db.SelectedBookID = ""

	res, err := f.m.AddBook("Runbooks", "ops notes")
	require.NoError(t, err)
	assert.Equal(t, res.Book.ID, f.db.SelectedBookID, "first book added with no selection becomes selected")

	r, err := f.m.RenameBook(res.Book.ID, "Playbooks", "")
	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.Equal(t, "ops notes", r.Book.Description)

	_, err = f.m.DeleteBook("b1")
	require.NoError(t, err)
	assert.Empty(t, f.db.ItemsOf("b1"), "items go with the book")

	var nf NotFoundError
	_, err = f.m.DeleteBook("b1")
	assert.ErrorAs(t, err, &nf)
	_, err = f.m.AddBook(" ", "")
	assert.ErrorIs(t, err, ErrEmptyName)
}
