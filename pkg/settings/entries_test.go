package settings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjmtoolkit/cjmtoolkit/internal/testutil"
)

func TestCursor_Entries(t *testing.T) {
	d := Decode(strings.NewReader(`<Root v="1">
  <B>b</B>
  <A><X>x0</X><X>x1</X></A>
</Root>`), FormatXML, WithLogger(testutil.NewTestLogger(t)))
	require.Equal(t, StatusNoError, d.Status())

	entries := d.Root().Entries()

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"/", "/Root", "/Root/A", "/Root/A/X[0]", "/Root/A/X[1]", "/Root/B"}, paths)

	assert.Equal(t, 0, entries[0].Depth)
	assert.Equal(t, 3, entries[4].Depth)
	assert.Equal(t, 1, entries[4].Index)
	assert.Equal(t, "x1", entries[4].Value)
	assert.Equal(t, map[string]string{"v": "1"}, entries[1].Attributes)
	assert.Nil(t, entries[2].Attributes)

	// Every path resolves back to its node.
	for _, e := range entries[1:] {
		assert.Equal(t, e.Value, d.Root().Find(e.Path).Value(), e.Path)
	}
}

func TestCursor_EntriesFromSubtree(t *testing.T) {
	d := Decode(strings.NewReader(`<Root><A><X>1</X></A><A><X>2</X></A></Root>`), FormatXML)
	require.Equal(t, StatusNoError, d.Status())

	entries := d.Root().Find("Root/A[1]").Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "/Root/A[1]", entries[0].Path)
	assert.Equal(t, 0, entries[0].Depth)
	assert.Equal(t, 1, entries[0].Index)
	assert.Equal(t, "/Root/A[1]/X", entries[1].Path)
	assert.Equal(t, "2", entries[1].Value)
}

func TestCursor_EntriesCopiesAttributes(t *testing.T) {
	tree := NewTree(nil)
	root := tree.Root()
	root.SetAttribute("k", "v")

	entries := root.Entries()
	entries[0].Attributes["k"] = "changed"
	assert.Equal(t, "v", root.Attribute("k"))

	assert.Nil(t, Cursor{}.Entries())
}
