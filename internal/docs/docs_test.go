package docs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopics_HaveTitlesAndBodies(t *testing.T) {
	topics := Topics()
	require.GreaterOrEqual(t, len(topics), 4)
	for _, tp := range topics {
		assert.NotEmpty(t, tp.Title, "topic %s has no heading", tp.Name)
		body, ok := Get(strings.ToUpper(tp.Name))
		require.True(t, ok, tp.Name)
		assert.True(t, strings.HasPrefix(body, "# "), tp.Name)
	}
}

func TestGet_RejectsPaths(t *testing.T) {
	for _, in := range []string{"", "../docs", "content/history", "history.md"} {
		_, ok := Get(in)
		assert.False(t, ok, in)
	}
}
