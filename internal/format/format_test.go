package format

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID       string   `json:"id"`
	ParentID *string  `json:"parentId"`
	Tags     []string `json:"tags"`
	Count    int      `json:"count"`
	Ratio    float64  `json:"ratio"`
}

func TestWrite_Formats(t *testing.T) {
	v := sample{ID: "a1", Tags: []string{"x", "y"}, Count: 2, Ratio: 0.5}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, v, "", false))
	assert.JSONEq(t, `{"id":"a1","parentId":null,"tags":["x","y"],"count":2,"ratio":0.5}`, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, v, "edn", false))
	assert.Equal(t, `{:count 2 :id "a1" :parent-id nil :ratio 0.5 :tags ["x" "y"]}`+"\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, v, "yaml", false))
	assert.Contains(t, buf.String(), "id: a1\n")
	assert.Contains(t, buf.String(), "parentId: null\n")

	assert.Error(t, Write(&buf, v, "xml", false))
}

func TestWriteEDN_Pretty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEDN(&buf, map[string]any{"a": []any{1, map[string]any{}}}, true))
	assert.Equal(t, "{\n  :a [\n    1\n    {}\n  ]\n}\n", buf.String())
}
